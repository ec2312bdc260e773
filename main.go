package main

import "github.com/KaramelBytes/kinderstats/cmd"

func main() {
	cmd.Execute()
}
