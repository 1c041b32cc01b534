package main

import (
	"log"
	"net/http"
	"os"
	"snagline/account"
	"snagline/account/accountrest"
	"snagline/bizerror"
	"snagline/domain"
	"snagline/domain/approval/approvalrest"
	"snagline/domain/workorder/workorderrest"
	"snagline/event"
	"snagline/infra/tracing"
	"snagline/persistence"
	"snagline/session"
	"snagline/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition). The legacy attachment table is
	// deliberately left out: it belongs to an external upload path and reads
	// probe for it instead.
	err = ds.GormDB(nil).AutoMigrate(
		&domain.Building{}, &domain.Inspection{}, &domain.WorkOrder{},
		&account.User{}, &event.EventRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	adminSecret := os.Getenv("ADMIN_SECRET")
	if adminSecret == "" {
		adminSecret = "admin123"
	}
	if err := account.BootstrapAdminUser(ds.GormDB(nil), adminSecret); err != nil {
		log.Fatalf("bootstrap admin user failed %v\n", err)
	}

	if closer := tracing.InitTracer(); closer != nil {
		defer closer.Close()
	}

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "snagline")
	})

	sessions.RegisterSessionsHandler(engine)
	approvalrest.RegisterApprovalsRestAPI(engine, session.SimpleAuthFilter())
	workorderrest.RegisterWorkOrdersRestAPI(engine, session.SimpleAuthFilter())
	accountrest.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
