package main

import (
	"github.com/shopflow/choreography/internal/app"
	"github.com/shopflow/choreography/internal/di"
)

func main() {
	app.Run(di.PaymentService())
}
