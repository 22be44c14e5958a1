package main

import "github.com/jywlabs/lessongen/cmd"

func main() {
	cmd.Execute()
}
