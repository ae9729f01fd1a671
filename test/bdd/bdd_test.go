package bdd

import (
	"os"
	"testing"

	"github.com/andrescamacho/warera-economy-go/test/bdd/steps"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	steps.RegisterEconomySteps(sc)
	steps.RegisterPriceCacheSteps(sc)
}

func TestMain(m *testing.M) {
	// The price cache scenarios persist snapshots through GORM
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("failed to initialize shared test database: " + err.Error())
	}

	code := m.Run()

	if err := helpers.CloseSharedTestDB(); err != nil {
		panic("failed to close shared test database: " + err.Error())
	}

	os.Exit(code)
}
