package main

import (
	"minitimer/internal/app"
	"minitimer/internal/cli"
)

func main() {
	cli.Execute(app.Run)
}
