// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"ip-api-client/internal/resolver"
	"ip-api-client/internal/store"
)

// errorBody：错误响应结构
type errorBody struct {
	Error string `json:"error"`
}

// 解析访问者 IP：优先参数，其次常见反向代理头，最后退回连接对端地址
// 背景：多层代理场景下保证稳定获取源 IP
func getClientIP(r *http.Request) string {
	if q := r.URL.Query().Get("ip"); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if x := h.Get("cf-connecting-ip"); x != "" {
		return x
	}
	if x := h.Get("x-real-ip"); x != "" {
		return x
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 API 前缀之下；store 可为 nil，
// 此时 /stats 返回零值。
func BuildRoutes(res *resolver.Resolver, st *store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ip", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
			return
		}
		ipStr := getClientIP(r)
		addr, err := netip.ParseAddr(ipStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid ip address"})
			return
		}
		result, source, err := res.Lookup(r.Context(), addr)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
			return
		}
		w.Header().Set("x-result-source", source)
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		var t store.Totals
		if st != nil {
			t, _ = st.GetTotals(r.Context())
		}
		writeJSON(w, http.StatusOK, map[string]any{"total": t.Total, "today": t.Today})
	})

	return mux
}
