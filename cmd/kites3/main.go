package main

import "github.com/assetnote/kites3/cmd/kites3/cmd"

func main() {
	cmd.Execute()
}
