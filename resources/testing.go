package resources

import (
	"os"
	"testing"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/database"
)

//InitIntegrationTestingResources creates a default testing
//resource bundle for use with integration testing.
//The MongoDB server is contacted via the URI provided
//as by go test -args [MongoDB URI].
func InitIntegrationTestingResources(t *testing.T) *Resources {
	if testing.Short() {
		t.Skip()
	}

	if len(os.Args) != 2 {
		t.Fatal("-args [MongoDB URI] is required to run netmon integration tests with go test")
	}

	mongoURI := os.Args[1]

	conf, err := config.LoadTestingConfig(mongoURI)
	if err != nil {
		t.Fatal(err)
	}

	// Fire up the logging system
	logger := initLogger(&conf.S.Log)

	// Allows code to interact with the database
	db, err := database.NewDB(conf, logger)
	if err != nil {
		t.Fatal(err)
	}

	return &Resources{
		Config: conf,
		Log:    logger,
		DB:     db,
	}
}
