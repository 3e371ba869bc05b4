package main

//	@title			papergen subject API
//	@version		0.1.0
//	@description	Subject store of the test paper generator.

// @host		localhost:8080
// @BasePath	/api/v1

import (
	"gitlab.com/testpaper/papergen/cmd"
)

func main() {
	// Execute command-line interface; should be the last call in main()
	cmd.Execute()
}
