package main

import "github.com/zfsreader/zfsreader/cmd"

func main() {
	cmd.Execute()
}
