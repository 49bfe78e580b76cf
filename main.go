package main

import "github.com/yeager/tp-stats/cmd"

func main() {
	cmd.Execute()
}
