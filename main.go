package main

import "github.com/kozaktomas/cubescout/cmd"

func main() {
	cmd.Execute()
}
