package main

import (
	"github.com/yudistira/storecart/cmd"
)

func main() {
	cmd.Start()
}
