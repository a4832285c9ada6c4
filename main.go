package main

import (
	"github.com/HarshithaPadmanabha/StudyHub/cmd"
	"github.com/HarshithaPadmanabha/StudyHub/internal/logging"
)

func main() {
	logging.Init()
	cmd.Execute()
}
