// cmd/dmsdiffsel/main.go
package main

import (
	"dmsprefs/internal/appshell"
	"dmsprefs/internal/diffselapp"
)

func main() {
	appshell.Main(diffselapp.RunContext)
}
