package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/slotlist/bootstrap"
	"github.com/fulldump/slotlist/configuration"
)

var banner = `
     _       _   _ _     _      _ 
 ___| | ___ | |_| (_)___| |_ __| |
/ __| |/ _ \| __| | / __| __/ _' |
\__ \ | (_) | |_| | \__ \ || (_| |
|___/_|\___/ \__|_|_|___/\__\__,_|
                       version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _, err := bootstrap.Bootstrap(&c)
	if err != nil {
		log.Println("ERROR:", err.Error())
		os.Exit(-1)
	}

	start()
}
