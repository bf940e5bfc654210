// 包 ipapi：ip-api.com 查询客户端库，封装请求构造、响应收集与解码投影
package ipapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"time"
)

// BaseURL：远端服务固定入口，按契约不提供配置项
const BaseURL = "http://ip-api.com/json"

// 文档注释：查询客户端
// 背景：仅持有注入的 HTTP 执行器与日志器，无任何全局或共享可变状态；同一实例可被
// 多个调用并发复用，多实例之间互相独立。
// 约束：连接复用、TLS 与重定向由传入的 http.Client 负责；库内不做重试与超时策略，
// 取消与截止时间由调用方通过 ctx 组合。
type Client struct {
	hc   *http.Client
	base *url.URL
	log  *slog.Logger
}

// New：构造客户端
// 背景：hc 为空时回退到 10s 超时的默认客户端；l 为空时使用进程默认日志器。
// 约束：固定入口解析失败属于库自身缺陷而非运行时条件，直接 panic 快速暴露。
func New(hc *http.Client, l *slog.Logger) *Client {
	base, err := url.Parse(BaseURL)
	if err != nil {
		panic("ipapi: invalid base url: " + err.Error())
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	if l == nil {
		l = slog.Default()
	}
	return &Client{hc: hc, base: base, log: l}
}

// buildURL：由可选地址构造请求目标
// 背景：给定地址时作为路径段追加，否则使用裸入口由服务端推断来源地址。
func (c *Client) buildURL(addr netip.Addr) string {
	if !addr.IsValid() {
		return c.base.String()
	}
	return c.base.JoinPath(addr.String()).String()
}

// Query：执行一次查询
// 为什么：单次调用即单条线性链路（请求→收集→解码→投影），任一阶段失败立即短路，
// 返回带阶段标签的 *Error；成功时恰好产生一个 Result。
// 参数：addr 为零值（netip.Addr{}）时查询调用方自身的公网地址。
func (c *Client) Query(ctx context.Context, addr netip.Addr) (*Result, error) {
	u := c.buildURL(addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		// 合法地址不可能构造出非法目标，出现即为库缺陷
		panic("ipapi: invalid request target: " + err.Error())
	}
	t0 := time.Now()
	c.log.Debug("ipapi_req", "url", u)
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("ipapi_transport_error", "err", err)
		return nil, &Error{Stage: StageTransport, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Stage: StageTransport, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Stage: StageTransport, Err: err}
	}
	res, err := Decode(body)
	if err != nil {
		c.log.Debug("ipapi_decode_error", "err", err)
		return nil, err
	}
	c.log.Debug("ipapi_resp", "query", res.Query, "duration_ms", time.Since(t0).Milliseconds())
	return res, nil
}
