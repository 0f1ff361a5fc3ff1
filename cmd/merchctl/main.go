package main

import "github.com/gitshopapp/merchconfig/internal/cmd"

func main() {
	cmd.Execute()
}
