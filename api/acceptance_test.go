package api

import (
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/slotlist/database"
	"github.com/fulldump/slotlist/service"
)

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		db := database.NewDatabase(&database.Config{
			Dir: t.TempDir(),
		})

		biff.AssertNil(db.Load())
		biff.AssertEqual(db.GetStatus(), database.StatusOperating)

		s := service.NewService(db)

		b := Build(s, "test", "", "")
		b.WithInterceptors(
			PrettyErrorInterceptor,
			InterceptorUnavailable(db),
			RecoverFromPanic,
		)

		api := apitest.NewWithHandler(b)

		service.Acceptance(a, func(method, path string) *apitest.Request {
			return api.Request(method, "/v1"+path)
		})

		db.Stop()
	})
}

func TestUnavailable(t *testing.T) {

	db := database.NewDatabase(&database.Config{
		Dir: t.TempDir(),
	})

	b := Build(service.NewService(db), "test", "", "")
	b.WithInterceptors(
		PrettyErrorInterceptor,
		InterceptorUnavailable(db),
	)

	api := apitest.NewWithHandler(b)

	resp := api.Request("GET", "/v1/tables").Do()
	biff.AssertEqual(resp.StatusCode, 503)
	errorMessage := resp.BodyJson().(map[string]interface{})["error"].(map[string]interface{})["message"].(string)
	biff.AssertEqual(errorMessage, "temporary unavailable: opening")
}

func TestRelease(t *testing.T) {

	db := database.NewDatabase(&database.Config{
		Dir: t.TempDir(),
	})

	b := Build(service.NewService(db), "v1.2.3", "", "")
	api := apitest.NewWithHandler(b)

	resp := api.Request("GET", "/release").Do()
	biff.AssertEqual(resp.StatusCode, 200)
	biff.AssertEqualJson(resp.BodyJson(), "v1.2.3")
}
