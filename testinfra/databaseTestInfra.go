package testinfra

import (
	"log"
	"os"
	"path/filepath"
	"snagline/persistence"
	"strings"

	"github.com/google/uuid"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager

	sqliteFile string
}

// StartTestDatabase brings up a throwaway database per test run and installs
// it as the active data source. SQLite is the default; set
// TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306) to run against MySQL instead.
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	if mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE"); mysqlSvc != "" {
		return startMysqlTestDatabase(mysqlSvc, databaseName)
	}
	return startSqliteTestDatabase(databaseName)
}

func startSqliteTestDatabase(databaseName string) *TestDatabase {
	sqliteFile := filepath.Join(os.TempDir(), databaseName+".db")

	ds := &persistence.DataSourceManager{DatabaseConfig: &persistence.DatabaseConfig{
		DriverType: "sqlite3", DriverArgs: sqliteFile,
	}}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database connection failed %v\n", err)
	}

	persistence.ActiveDataSourceManager = ds
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds, sqliteFile: sqliteFile}
}

func startMysqlTestDatabase(mysqlSvc, databaseName string) *TestDatabase {
	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		log.Fatalf("failed to prepare database %v\n", err)
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database connection failed %v\n", err)
	}

	persistence.ActiveDataSourceManager = ds
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}

	if testDatabase.sqliteFile == "" {
		if db := testDatabase.DS.GormDB(nil); db != nil {
			if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
				log.Println("failed to drop test database: " + testDatabase.TestDatabaseName)
			}
		}
	}

	testDatabase.DS.Stop()
	if persistence.ActiveDataSourceManager == testDatabase.DS {
		persistence.ActiveDataSourceManager = nil
	}

	if testDatabase.sqliteFile != "" {
		if err := os.Remove(testDatabase.sqliteFile); err != nil && !os.IsNotExist(err) {
			log.Println("failed to remove test database file: " + testDatabase.sqliteFile)
		}
	}
}
