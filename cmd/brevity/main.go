package main

import "github.com/brevity-app/brevity-go/internal/cli"

func main() {
	cli.Execute()
}
