package main

import (
	"xorkevin.dev/cypherforge/cmd"
)

func main() {
	cmd.New().Execute()
}
