package service

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func jsonLines(documents ...JSON) string {
	body := ""
	for _, document := range documents {
		line, _ := json.Marshal(document)
		body += string(line) + "\n"
	}
	return body
}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create table", func(a *biff.A) {
		resp := apiRequest("POST", "/tables").
			WithBodyJson(JSON{
				"name": "people",
			}).Do()
		Save(resp, "Create table", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		expectedBody := JSON{
			"name":    "people",
			"total":   0,
			"slots":   0,
			"free":    0,
			"indexes": 0,
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)

		a.Alternative("Retrieve table", func(a *biff.A) {
			resp := apiRequest("GET", "/tables/people").Do()
			Save(resp, "Retrieve table", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("List tables", func(a *biff.A) {
			resp := apiRequest("GET", "/tables").Do()
			Save(resp, "List tables", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedBody})
		})

		a.Alternative("Create table twice", func(a *biff.A) {
			resp := apiRequest("POST", "/tables").
				WithBodyJson(JSON{
					"name": "people",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Drop table", func(a *biff.A) {
			resp := apiRequest("POST", "/tables/people:dropTable").Do()
			Save(resp, "Drop table", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

			a.Alternative("Get dropped table", func(a *biff.A) {
				resp := apiRequest("GET", "/tables/people").Do()
				Save(resp, "Get table - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				errorMessage := resp.BodyJson().(JSON)["error"].(JSON)["message"].(string)
				biff.AssertEqual(errorMessage, "table not found")
			})
		})

		a.Alternative("Insert many", func(a *biff.A) {

			resp := apiRequest("POST", "/tables/people:insert").
				WithBodyString(jsonLines(
					JSON{"id": "1", "name": "Alfonso"},
					JSON{"id": "2", "name": "Gerardo"},
					JSON{"id": "3", "name": "Maria"},
				)).Do()
			Save(resp, "Insert many", `
				Documents are read as a stream of JSON values. Every document gets
				a handle, the answer is one row per line.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqual(resp.BodyString(), ""+
				`{"handle":0,"payload":{"id":"1","name":"Alfonso"}}`+"\n"+
				`{"handle":1,"payload":{"id":"2","name":"Gerardo"}}`+"\n"+
				`{"handle":2,"payload":{"id":"3","name":"Maria"}}`+"\n")

			a.Alternative("Get handle", func(a *biff.A) {
				resp := apiRequest("GET", "/tables/people/handles/1").Do()
				Save(resp, "Get handle", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"handle":  1,
					"payload": JSON{"id": "2", "name": "Gerardo"},
				})
			})

			a.Alternative("Get invalid handle", func(a *biff.A) {
				resp := apiRequest("GET", "/tables/people/handles/abc").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Get handle out of range", func(a *biff.A) {
				resp := apiRequest("GET", "/tables/people/handles/99").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Remove handle", func(a *biff.A) {
				resp := apiRequest("DELETE", "/tables/people/handles/1").Do()
				Save(resp, "Remove handle", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"handle":  1,
					"payload": JSON{"id": "2", "name": "Gerardo"},
				})

				a.Alternative("Remove twice", func(a *biff.A) {
					resp := apiRequest("DELETE", "/tables/people/handles/1").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Get removed handle", func(a *biff.A) {
					resp := apiRequest("GET", "/tables/people/handles/1").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)

					resp = apiRequest("GET", "/tables/people").Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"name":    "people",
						"total":   2,
						"slots":   3,
						"free":    1,
						"indexes": 0,
					})
				})

				a.Alternative("Insert reuses the handle", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:insert").
						WithBodyJson(JSON{"id": "4", "name": "Lucia"}).Do()
					Save(resp, "Insert reuses a free handle", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusCreated)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"handle":  1,
						"payload": JSON{"id": "4", "name": "Lucia"},
					})
				})

				a.Alternative("Replace a free handle", func(a *biff.A) {
					resp := apiRequest("PUT", "/tables/people/handles/1").
						WithBodyJson(JSON{"id": "5", "name": "Pedro"}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusOK)

					resp = apiRequest("POST", "/tables/people:insert").
						WithBodyJson(JSON{"id": "6", "name": "Ana"}).Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"handle":  3,
						"payload": JSON{"id": "6", "name": "Ana"},
					})
				})
			})

			a.Alternative("Replace handle", func(a *biff.A) {
				resp := apiRequest("PUT", "/tables/people/handles/0").
					WithBodyJson(JSON{"id": "1", "name": "Alfonsito"}).Do()
				Save(resp, "Replace handle", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("GET", "/tables/people/handles/0").Do()
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"handle":  0,
					"payload": JSON{"id": "1", "name": "Alfonsito"},
				})
			})

			a.Alternative("Replace out of range", func(a *biff.A) {
				resp := apiRequest("PUT", "/tables/people/handles/3").
					WithBodyJson(JSON{"id": "9"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Replace with malformed JSON", func(a *biff.A) {
				resp := apiRequest("PUT", "/tables/people/handles/0").
					WithBodyString(`{"id":`).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Find with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/tables/people:find").
					WithBodyJson(JSON{
						"filter": JSON{
							"name": JSON{"$in": []string{"Alfonso", "Maria"}},
						},
					}).Do()
				Save(resp, "Find - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				lines := strings.Split(strings.TrimSpace(resp.BodyString()), "\n")
				biff.AssertEqual(len(lines), 2)
			})

			a.Alternative("Find with skip and limit", func(a *biff.A) {
				resp := apiRequest("POST", "/tables/people:find").
					WithBodyJson(JSON{
						"skip":  1,
						"limit": 1,
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"handle":  1,
					"payload": JSON{"id": "2", "name": "Gerardo"},
				})
			})

			a.Alternative("Compact", func(a *biff.A) {
				apiRequest("DELETE", "/tables/people/handles/2").Do()

				resp := apiRequest("POST", "/tables/people:compact").Do()
				Save(resp, "Compact", `
					Rewrites the journal of the table as a single snapshot. Handles
					and free handles are kept.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":    "people",
					"total":   2,
					"slots":   3,
					"free":    1,
					"indexes": 0,
				})
			})

			a.Alternative("Create index", func(a *biff.A) {
				resp := apiRequest("POST", "/tables/people:createIndex").
					WithBodyJson(JSON{
						"name":  "by-name",
						"field": "name",
					}).Do()
				Save(resp, "Create index", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":   "by-name",
					"field":  "name",
					"sparse": false,
				})

				a.Alternative("List indexes", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:listIndexes").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), []JSON{
						{"name": "by-name", "field": "name", "sparse": false},
					})
				})

				a.Alternative("Create index twice", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:createIndex").
						WithBodyJson(JSON{
							"name":  "by-name",
							"field": "name",
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
				})

				a.Alternative("Find by index value", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:find").
						WithBodyJson(JSON{
							"index": "by-name",
							"value": "Maria",
						}).Do()
					Save(resp, "Find - index lookup", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"handle":  2,
						"payload": JSON{"id": "3", "name": "Maria"},
					})
				})

				a.Alternative("Find by index value - not found", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:find").
						WithBodyJson(JSON{
							"index": "by-name",
							"value": "Nobody",
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Traverse index in reverse", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:find").
						WithBodyJson(JSON{
							"index":   "by-name",
							"reverse": true,
							"limit":   2,
						}).Do()
					Save(resp, "Find - index traverse", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(resp.BodyString(), ""+
						`{"handle":2,"payload":{"id":"3","name":"Maria"}}`+"\n"+
						`{"handle":1,"payload":{"id":"2","name":"Gerardo"}}`+"\n")
				})

				a.Alternative("Insert duplicated value", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:insert").
						WithBodyJson(JSON{"id": "7", "name": "Maria"}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)

					resp = apiRequest("GET", "/tables/people").Do()
					biff.AssertEqualJson(resp.BodyJson().(JSON)["total"], 3)
					biff.AssertEqualJson(resp.BodyJson().(JSON)["slots"], 3)
				})

				a.Alternative("Drop index", func(a *biff.A) {
					resp := apiRequest("POST", "/tables/people:dropIndex").
						WithBodyJson(JSON{"name": "by-name"}).Do()
					Save(resp, "Drop index", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

					resp = apiRequest("POST", "/tables/people:find").
						WithBodyJson(JSON{
							"index": "by-name",
							"value": "Maria",
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})
			})
		})
	})

	a.Alternative("Find with table not found", func(a *biff.A) {

		resp := apiRequest("POST", "/tables/nobody:find").
			WithBodyJson(JSON{}).Do()
		Save(resp, "Find - table not found", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		errorMessage := resp.BodyJson().(JSON)["error"].(JSON)["message"].(string)
		biff.AssertEqual(errorMessage, "table not found")
	})

	a.Alternative("Insert on not existing table", func(a *biff.A) {

		resp := apiRequest("POST", "/tables/animals:insert").
			WithBodyJson(JSON{"id": "cat"}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		biff.AssertEqual(resp.BodyString(), `{"handle":0,"payload":{"id":"cat"}}`+"\n")

		a.Alternative("Find all", func(a *biff.A) {

			resp := apiRequest("POST", "/tables/animals:find").
				WithBodyJson(JSON{}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyString(), `{"handle":0,"payload":{"id":"cat"}}`+"\n")
		})
	})

	a.Alternative("Insert malformed document", func(a *biff.A) {

		resp := apiRequest("POST", "/tables/animals:insert").
			WithBodyString(`{"id": `).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Create table with invalid name", func(a *biff.A) {

		resp := apiRequest("POST", "/tables").
			WithBodyJson(JSON{"name": "a/b"}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})
}
