package archive

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

const (
	// ManifestPath is where the manifest lives inside an archive.
	ManifestPath = "META-INF/MANIFEST.MF"
	// MultiReleaseAttribute flags an archive holding per-version entries.
	MultiReleaseAttribute = "Multi-Release"

	maxLineBytes = 72
)

// Manifest renders the main section of a manifest: Manifest-Version first,
// then attrs sorted by name, then the multi-release flag if set.
func Manifest(attrs map[string]string, multiRelease bool) []byte {
	var buf bytes.Buffer
	writeAttr(&buf, "Manifest-Version", "1.0")

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == "Manifest-Version" || k == MultiReleaseAttribute {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(&buf, k, attrs[k])
	}
	if multiRelease {
		writeAttr(&buf, MultiReleaseAttribute, "true")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// writeAttr writes one header, continuing lines longer than 72 bytes with a
// leading space. Lines are only split at rune boundaries.
func writeAttr(buf *bytes.Buffer, key, val string) {
	line := []byte(key + ": " + val)
	limit := maxLineBytes
	for len(line) > limit {
		cut := limit
		for cut > 1 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		buf.Write(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineBytes - 1
	}
	buf.Write(line)
	buf.WriteString("\r\n")
}
