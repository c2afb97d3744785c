package core

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/linkaudit/internal/models"
	"github.com/RecoveryAshes/linkaudit/internal/utils"
)

// errNoResponse 请求结束但没有收到任何响应
var errNoResponse = errors.New("请求完成但未收到响应")

// Prober 对单个URL发起一次GET检测
// 每个源站拥有独立的Prober,同一Prober上的调用是顺序的
type Prober interface {
	// Probe 返回HTTP状态码;未收到响应时返回错误
	Probe(target *url.URL) (int, error)

	// Close 释放该源站的连接
	Close()
}

// ProberFactory 为一个源站创建独立的Prober
type ProberFactory func(origin string) (Prober, error)

// TransportFactory 为一个源站创建独立的HTTP传输层
type TransportFactory func(config models.CheckConfig) http.RoundTripper

// CollyProber 基于Colly的探测器
// collector工作在同步模式: Visit返回时回调已全部执行完毕
type CollyProber struct {
	origin    string
	collector *colly.Collector
	transport http.RoundTripper

	// 最近一次Visit收到的状态码(仅在同步Visit期间写入)
	status int
}

// NewTransport 创建带连接超时的HTTP传输层
// 每个源站最多一个连接,连接状态不与其他源站共享
func NewTransport(config models.CheckConfig) http.RoundTripper {
	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeoutDuration(),
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: config.ConnectTimeoutDuration(),
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     1,
		IdleConnTimeout:     30 * time.Second,
	}
}

// NewCollyProber 创建Colly探测器
func NewCollyProber(origin string, config models.CheckConfig, headers http.Header, transport http.RoundTripper) *CollyProber {
	p := &CollyProber{
		origin:    origin,
		transport: transport,
	}

	options := []colly.CollectorOption{
		// 同一URL可能在多行中出现,每次都需要检测
		colly.AllowURLRevisit(),
		// 4xx/5xx同样是有效结果,交给OnResponse处理
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(config.MaxBodySize),
	}
	if ua := headers.Get("User-Agent"); ua != "" {
		options = append(options, colly.UserAgent(ua))
	}

	c := colly.NewCollector(options...)
	c.WithTransport(transport)
	// Colly默认10秒整体超时,这里以配置为准(0表示不限制,只受连接超时约束)
	c.SetRequestTimeout(config.RequestTimeoutDuration())

	c.OnRequest(func(r *colly.Request) {
		for name, values := range headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
	})

	c.OnResponse(func(r *colly.Response) {
		p.status = r.StatusCode
	})

	c.OnError(func(r *colly.Response, err error) {
		utils.Debugf("请求失败 [%s]: %v", r.Request.URL, err)
	})

	p.collector = c
	return p
}

// Probe 实现Prober接口
func (p *CollyProber) Probe(target *url.URL) (int, error) {
	if target == nil {
		return 0, fmt.Errorf("URL为空")
	}

	p.status = 0
	err := p.collector.Visit(target.String())
	// 收到响应后的处理错误(如字符集转换失败)不影响状态码
	if p.status != 0 {
		return p.status, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, errNoResponse
}

// Close 实现Prober接口
func (p *CollyProber) Close() {
	if closer, ok := p.transport.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

// NewCollyProberFactory 创建Colly探测器工厂
// 头部只在此处读取和验证一次,所有源站共享同一份(只读)头部
func NewCollyProberFactory(config models.CheckConfig, headerProvider models.HeaderProvider, newTransport TransportFactory) (ProberFactory, error) {
	headers := make(http.Header)
	if headerProvider != nil {
		provided, err := headerProvider.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		for name, values := range provided {
			headers[name] = append([]string(nil), values...)
		}
	}
	if config.UserAgent != "" {
		headers.Set("User-Agent", config.UserAgent)
	}
	if newTransport == nil {
		newTransport = NewTransport
	}

	return func(origin string) (Prober, error) {
		return NewCollyProber(origin, config, headers, newTransport(config)), nil
	}, nil
}
