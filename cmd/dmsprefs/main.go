// cmd/dmsprefs/main.go
package main

import (
	"dmsprefs/internal/app"
	"dmsprefs/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
