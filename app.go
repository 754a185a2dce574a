package main

import "github.com/masmgr/depminer-go/cmd"

func main() {
	cmd.Run()
}
