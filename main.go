package main

import "github.com/ValentinKolb/catalogkv/cmd"

func main() {
	cmd.Execute()
}
