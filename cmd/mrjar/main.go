package main

import "github.com/goplus/mrjar/cmd/mrjar/internal"

func main() {
	internal.Execute()
}
