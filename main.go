package main

import "github.com/ValentinKolb/dKV-proxy/cmd"

func main() {
	cmd.Execute()
}
