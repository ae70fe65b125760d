package main

import "github.com/iwtcode/cncSimulator/internal/app"

// main — точка входа приложения. Вся сборка зависимостей выполняется в fx.
func main() {
	app.New().Run()
}
