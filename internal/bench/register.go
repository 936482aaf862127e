package bench

import (
	"nexevo/internal/evaluate"
	"nexevo/internal/factory"
)

func init() {
	must(factory.Register("linear", buildLinear))
	must(factory.Register("mlp", buildMLP))
	must(evaluate.Register("sphere", sphereFitness))
	must(evaluate.Register("rastrigin", rastriginFitness))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
