// 查询工具：对给定地址（或本机公网地址）执行一次查询并输出 JSON 行
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"time"

	"ip-api-client/internal/logger"
	"ip-api-client/pkg/ipapi"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	timeout := flag.Duration("timeout", 10*time.Second, "单次查询超时")
	flag.Parse()

	client := ipapi.New(&http.Client{Timeout: *timeout}, l)
	enc := json.NewEncoder(os.Stdout)

	// 无参数时查询本机公网地址
	args := flag.Args()
	if len(args) == 0 {
		args = []string{""}
	}

	exit := 0
	for _, arg := range args {
		var addr netip.Addr
		if arg != "" {
			a, err := netip.ParseAddr(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad address %q: %v\n", arg, err)
				exit = 1
				continue
			}
			addr = a
		}
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		res, err := client.Query(ctx, addr)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "query %q failed: %v\n", arg, err)
			exit = 1
			continue
		}
		_ = enc.Encode(res)
	}
	os.Exit(exit)
}
