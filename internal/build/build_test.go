package build

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goplus/mrjar/internal/archive"
	"github.com/goplus/mrjar/internal/config"
	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/buildsys"
)

const descriptor = `
name: app
java:
  target: 8
  minimumToolchain: 11
  strictVersions: %STRICT%
  testWith: [11]
test:
  launcher: libs/launcher.jar
units:
  - name: main
    moduleName: com.example.app
    alternateVersions: [17, 9]
  - name: test
    alternateVersions: [17]
`

var projectFiles = map[string]string{
	"src/main/java/pkg/Foo.java":        "class Foo {}",
	"src/main/java/pkg/Bar.java":        "class Bar {}",
	"src/main/java9/pkg/Foo.java":       "class Foo {}",
	"src/main/java17/pkg/Foo.java":      "class Foo {}",
	"src/main/resources/app.properties": "k=v",
	"src/test/java/pkg/FooTest.java":    "class FooTest {}",
	"src/test/java17/pkg/FooTest.java":  "class FooTest {}",
}

// project writes a small multi-release project and plans it with the
// running JDK at version 17.
func project(t *testing.T, strict bool) *Project {
	t.Helper()
	yml := strings.Replace(descriptor, "%STRICT%", map[bool]string{true: "true", false: "false"}[strict], 1)
	return planProject(t, yml, projectFiles)
}

func planProject(t *testing.T, yml string, files map[string]string) *Project {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, config.DefaultFile)
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap, err := cfg.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	versions := snap.Versions
	versions.Running = 17
	p, err := Prepare(snap, versions)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return p
}

func newTestBuilder() (*Builder, *mockCompiler, *mockTools) {
	c := &mockCompiler{}
	tools := &mockTools{}
	return &Builder{Compiler: c, Toolchains: &mockResolver{}, Checker: tools, Runner: tools, Jobs: 2}, c, tools
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	ret := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		ret[f.Name] = buf.String()
	}
	return ret
}

func TestPrepare(t *testing.T) {
	p := project(t, false)
	main, ok := p.Plan.Chain("main")
	if !ok {
		t.Fatal("missing main chain")
	}
	if diff := cmp.Diff([]int{9, 17}, main.Versions()); diff != "" {
		t.Errorf("main versions mismatch (-want +got):\n%s", diff)
	}
	if len(p.Elements) != 1 || p.Elements[0].Unit != "main" {
		t.Fatalf("Elements = %+v, want main only", p.Elements)
	}

	var names []string
	for _, r := range p.Runs() {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"test", "testJava8", "testJava11", "testJava17"}, names); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
	def := p.Runs()[0]
	if def.Classpath[0] != main.Base.Packaging.Archive {
		t.Errorf("default run classpath = %v, want archive first", def.Classpath)
	}
	// actual is the running 17, so the test variant for 17 joins the default run
	test, _ := p.Plan.Chain("test")
	if !cmp.Equal(def.ClassesDirs, []string{test.Base.Output.ClassesDir, test.At(0).Unit.Output.ClassesDir}) {
		t.Errorf("default run classes dirs = %v", def.ClassesDirs)
	}
}

func TestPrepareInvalid(t *testing.T) {
	p := project(t, false)
	snap := *p.Snapshot
	snap.Units = nil
	for _, d := range p.Snapshot.Units {
		d.AlternateVersions = []int{8}
		snap.Units = append(snap.Units, d)
	}
	_, err := Prepare(&snap, p.Versions)
	if !errors.Is(err, variant.ErrInvalidConfiguration) {
		t.Fatalf("Prepare() error = %v, want ErrInvalidConfiguration", err)
	}
	for _, name := range []string{`"main"`, `"test"`} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name unit %s", err, name)
		}
	}
}

func TestBuild(t *testing.T) {
	p := project(t, false)
	b, compiler, _ := newTestBuilder()
	if err := b.Build(context.Background(), p); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	main, _ := p.Plan.Chain("main")
	files := readZip(t, main.Base.Packaging.Archive)
	for name, want := range map[string]string{
		"pkg/Foo.class":                      "main@8",
		"pkg/Bar.class":                      "main@8",
		"app.properties":                     "k=v",
		"META-INF/versions/9/pkg/Foo.class":  "java9@9",
		"META-INF/versions/17/pkg/Foo.class": "java17@17",
	} {
		if got := files[name]; got != want {
			t.Errorf("archive entry %s = %q, want %q", name, got, want)
		}
	}
	if !strings.Contains(files[archive.ManifestPath], "Multi-Release: true") {
		t.Errorf("manifest = %q, want Multi-Release", files[archive.ManifestPath])
	}
	sources := readZip(t, main.Base.Packaging.SourcesArchive)
	if _, ok := sources["META-INF/versions/9/pkg/Foo.java"]; !ok {
		t.Errorf("sources archive misses versioned source")
	}

	base, _ := compiler.call("main")
	if base.Release != 8 || base.Toolchain.Version != 17 {
		t.Errorf("main compiled with release %d on %d, want 8 on 17", base.Release, base.Toolchain.Version)
	}
	v17, _ := compiler.call("java17")
	if len(v17.Args) != 2 || v17.Args[0] != "--patch-module" {
		t.Fatalf("java17 args = %v, want --patch-module", v17.Args)
	}
	patch := append(main.Base.Output.Dirs(), main.At(0).Unit.Output.Dirs()...)
	wantPatch := "com.example.app=" + strings.Join(patch, string(os.PathListSeparator))
	if v17.Args[1] != wantPatch {
		t.Errorf("java17 patch = %q, want %q", v17.Args[1], wantPatch)
	}
	if !cmp.Equal(v17.Classpath[:2], main.At(0).Unit.Output.Dirs()) {
		t.Errorf("java17 classpath = %v, want java9 output first", v17.Classpath)
	}

	for _, path := range []string{p.OutgoingFile(), p.TestsFile()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	p := project(t, false)
	b, _, _ := newTestBuilder()
	main, _ := p.Plan.Chain("main")

	if err := b.Build(context.Background(), p); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	first, err := os.ReadFile(main.Base.Packaging.Archive)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Build(context.Background(), p); err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	second, err := os.ReadFile(main.Base.Packaging.Archive)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("archive changed between identical builds")
	}
}

func TestBuildCompileFailure(t *testing.T) {
	p := project(t, false)
	b, compiler, _ := newTestBuilder()
	compiler.fail = map[string]bool{"java9": true}

	err := b.Build(context.Background(), p)
	if !errors.Is(err, buildsys.ErrCompileFailure) {
		t.Fatalf("Build() error = %v, want ErrCompileFailure", err)
	}
	if !errors.Is(err, ErrDependencyFailed) {
		t.Errorf("Build() error = %v, want test unit skipped", err)
	}
	if _, ok := compiler.call("java17"); ok {
		t.Errorf("java17 compiled after java9 failed")
	}
	if _, ok := compiler.call("test"); ok {
		t.Errorf("test compiled after main failed")
	}
	main, _ := p.Plan.Chain("main")
	if _, err := os.Stat(main.Base.Packaging.Archive); !os.IsNotExist(err) {
		t.Errorf("archive written despite failure")
	}
}

func TestBuildCompileFailureIsolated(t *testing.T) {
	yml := `
name: app
java:
  target: 8
  minimumToolchain: 11
units:
  - name: main
    alternateVersions: [17, 9]
  - name: lib
    library: true
    alternateVersions: [11]
  - name: test
`
	files := map[string]string{
		"src/main/java/pkg/Foo.java":     "class Foo {}",
		"src/main/java9/pkg/Foo.java":    "class Foo {}",
		"src/lib/java/lib/Lib.java":      "class Lib {}",
		"src/lib/java11/lib/Lib.java":    "class Lib {}",
		"src/test/java/pkg/FooTest.java": "class FooTest {}",
	}
	p := planProject(t, yml, files)
	b, compiler, _ := newTestBuilder()
	compiler.fail = map[string]bool{"java9": true}

	err := b.Build(context.Background(), p)
	if !errors.Is(err, buildsys.ErrCompileFailure) {
		t.Fatalf("Build() error = %v, want ErrCompileFailure", err)
	}
	if !errors.Is(err, ErrDependencyFailed) || !strings.Contains(err.Error(), "skipping test") {
		t.Errorf("Build() error = %v, want test skipped", err)
	}
	if _, ok := compiler.call("test"); ok {
		t.Errorf("test compiled after main failed")
	}
	for _, name := range []string{"lib", "libJava11"} {
		if _, ok := compiler.call(name); !ok {
			t.Errorf("%s not compiled", name)
		}
	}

	lib, ok := p.Plan.Chain("lib")
	if !ok {
		t.Fatal("missing lib chain")
	}
	files = readZip(t, lib.Base.Packaging.Archive)
	for name, want := range map[string]string{
		"lib/Lib.class":                      "lib@8",
		"META-INF/versions/11/lib/Lib.class": "libJava11@11",
	} {
		if got := files[name]; got != want {
			t.Errorf("lib archive entry %s = %q, want %q", name, got, want)
		}
	}
}

func TestBuildMissingToolchain(t *testing.T) {
	p := project(t, false)
	b, _, _ := newTestBuilder()
	b.Toolchains = &mockResolver{missing: map[int]bool{17: true}}
	err := b.Build(context.Background(), p)
	if !errors.Is(err, toolchain.ErrNotFound) {
		t.Fatalf("Build() error = %v, want ErrNotFound", err)
	}
}

func TestTest(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		want   []int // toolchains of the launched runs, in run order
	}{
		{
			name: "running toolchain",
			want: []int{17},
		},
		{
			// test on 11, then testJava8 and testJava17; testJava11 is
			// covered by test
			name:   "strict",
			strict: true,
			want:   []int{11, 8, 17},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := project(t, tt.strict)
			b, _, tools := newTestBuilder()
			if err := b.Test(context.Background(), p); err != nil {
				t.Fatalf("Test() error = %v", err)
			}
			var got []int
			for _, call := range tools.tests {
				got = append(got, call.toolchain)
				if call.launch.Launcher != p.Launcher {
					t.Errorf("launcher = %q, want %q", call.launch.Launcher, p.Launcher)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("test launches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTestSelection(t *testing.T) {
	p := project(t, true)
	b, _, tools := newTestBuilder()
	if err := b.Test(context.Background(), p, "testJava17"); err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if len(tools.tests) != 1 || tools.tests[0].toolchain != 17 {
		t.Errorf("launches = %+v, want one on 17", tools.tests)
	}
	if err := b.Test(context.Background(), p, "testJava99"); err == nil {
		t.Errorf("Test(unknown) error = nil")
	}
	p.Launcher = ""
	if err := b.Test(context.Background(), p); !errors.Is(err, ErrNoLauncher) {
		t.Errorf("Test() error = %v, want ErrNoLauncher", err)
	}
}

func TestValidate(t *testing.T) {
	p := project(t, false)
	b, _, tools := newTestBuilder()
	if err := b.Validate(context.Background(), p); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(tools.checks) != 1 {
		t.Fatalf("checks = %+v, want one", tools.checks)
	}
	call := tools.checks[0]
	main, _ := p.Plan.Chain("main")
	want := checkCall{toolchain: 17}
	want.check.Module = "com.example.app"
	want.check.Archive = main.Base.Packaging.Archive
	want.check.ModulePath = main.Base.CompileClasspath
	want.check.MultiRelease = 17
	if diff := cmp.Diff(want, call, cmp.AllowUnexported(checkCall{})); diff != "" {
		t.Errorf("check mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	p := project(t, false)
	var buf bytes.Buffer
	if err := p.Describe(&buf); err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"name: app",
		"actual: 17",
		"compile: compileJava9Java",
		"prefix: META-INF/versions/17/",
		"name: runtimeElements",
		"name: testJava17",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe() output misses %q:\n%s", want, out)
		}
	}
}
