package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fulldump/slotlist/table"
)

// TestChurn preloads N documents, then every worker removes and reinserts
// its share. With handle recycling the number of slots must stay at N.
func TestChurn(c Config) {

	createServer := c.Base == ""

	var stop func()
	var dataDir string
	if createServer {
		dataDir, stop = CreateServer(&c)
	}

	tableName := CreateTable(c.Base)
	client := NewClient()

	{
		fmt.Println("Preload documents...")
		r, w := io.Pipe()

		encoder := json.NewEncoder(w)
		go func() {
			for i := int64(0); i < c.N; i++ {
				encoder.Encode(JSON{
					"id":     strconv.FormatInt(i, 10),
					"worker": i % int64(c.Workers),
				})
			}
			w.Close()
		}()

		resp, err := client.Post(c.Base+"/v1/tables/"+tableName+":insert", "application/json", r)
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			os.Exit(4)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	handleURL := c.Base + "/v1/tables/" + tableName + "/handles/"
	insertURL := c.Base + "/v1/tables/" + tableName + ":insert"

	t0 := time.Now()
	Parallel(c.Workers, func(worker int) {
		for h := int64(worker); h < c.N; h += int64(c.Workers) {

			req, _ := http.NewRequest(http.MethodDelete, handleURL+strconv.FormatInt(h, 10), nil)
			resp, err := client.Do(req)
			if err != nil {
				fmt.Println("ERROR: remove:", err.Error())
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			body := fmt.Sprintf(`{"id":"%d","worker":%d,"churned":true}`, h, worker)
			resp, err = client.Post(insertURL, "application/json", strings.NewReader(body))
			if err != nil {
				fmt.Println("ERROR: insert:", err.Error())
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	})

	took := time.Since(t0)
	fmt.Println("churned:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f ops/sec\n", float64(2*c.N)/took.Seconds())

	info := GetTable(c.Base, tableName)
	fmt.Println("table:", info)

	if !createServer {
		return
	}

	stop()

	t1 := time.Now()
	t, err := table.Open(path.Join(dataDir, tableName+".journal"))
	if err != nil {
		fmt.Println("ERROR: open:", err.Error())
		return
	}
	defer t.Close()
	tookOpen := time.Since(t1)
	fmt.Println("open took:", tookOpen, "rows:", t.Len(), "slots:", t.Slots())
	fmt.Printf("Throughput Open: %.2f commands/sec\n", float64(3*c.N)/tookOpen.Seconds())
}
