package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/api"
	"github.com/fulldump/slotlist/configuration"
	"github.com/fulldump/slotlist/database"
	"github.com/fulldump/slotlist/service"
)

var VERSION = "dev"

// Bootstrap wires the database and the HTTP API. start blocks until stop is
// called or the process receives SIGTERM or SIGINT.
func Bootstrap(c *configuration.Configuration) (start, stop func(), err error) {

	db := database.NewDatabase(&database.Config{
		Dir:           c.Dir,
		FlushInterval: c.FlushInterval,
	})

	b := api.Build(service.NewService(db), VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(log.New(os.Stdout, "ACCESS: ", log.Lshortfile)),
		api.PrettyErrorInterceptor,
		api.InterceptorUnavailable(db),
		api.RecoverFromPanic,
	)

	s := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}
	log.Println("listening on", c.HttpAddr)

	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			err := db.Stop()
			if err != nil {
				log.Println("ERROR: stop database:", err.Error())
			}
			s.Shutdown(context.Background())
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		fmt.Println("Signal received", sig.String())
		stop()
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				fmt.Println(err.Error())
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Serve(ln)
			if err != nil && err != http.ErrServerClosed {
				fmt.Println(err.Error())
			}
		}()

		wg.Wait()
	}

	return start, stop, nil
}
