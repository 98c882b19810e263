package main

import "github.com/oshokin/ulmotion/cmd/ulmotion/cmd"

func main() {
	cmd.Execute()
}
