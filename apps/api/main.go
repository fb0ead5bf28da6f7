package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof on the debug server
	"os"

	echoapi "github.com/trezcool/deptportal/apps/api/echo"
	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/download"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/core/subscriber"
	logsvc "github.com/trezcool/deptportal/services/logger"
	pushsvc "github.com/trezcool/deptportal/services/push"
	"github.com/trezcool/deptportal/storage/stores"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	ctx := context.Background()
	st, err := stores.Open(ctx, conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = st.Close(ctx); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	cursorCache, err := st.CursorCache(ctx, conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up cursor cache: %v", err), err)
	}

	files, uploadDir, err := stores.NewFileStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	// set up services
	pushSvc := pushsvc.NewConsoleService(
		log.New(os.Stdout, "PUSH : ", log.LstdFlags|log.Lmicroseconds),
		logger,
		conf,
	)
	subjSvc := subject.NewService(st.Subjects)
	subSvc := subscriber.NewService(st.Subscribers)
	notifSvc := notification.NewService(st.Notifications, subSvc, pushSvc, logger, conf)
	asgSvc := assignment.NewService(st.Assignments, st.Tx, notifSvc, files, logger, conf)
	matSvc := material.NewService(st.Materials, cursorCache, files, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Backend)
	expvar.NewString("files").Set(conf.Files.Backend)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			NotificationSvc: notifSvc,
			AssignmentSvc:   asgSvc,
			MaterialSvc:     matSvc,
			SubjectSvc:      subjSvc,
			SubscriberSvc:   subSvc,
			Downloads:       download.NewProxy(conf.Download.Timeout, logger),
			UploadDir:       uploadDir,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
