package main

import "github.com/0xmoonear/wormhole/cmd"

func main() {
	cmd.Execute()
}
