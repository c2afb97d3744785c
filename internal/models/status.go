package models

// 保留的非HTTP状态码(输出契约的一部分)
// 均在100-599之外,且互不相同,下游可以无歧义地区分四类结果
const (
	// StatusTimeout 建立连接(或配置的整体请求)超时,未发生HTTP交换
	StatusTimeout = 600

	// StatusConnectionFailure 连接层失败: DNS解析失败、连接被拒绝/重置、TLS握手失败、网络不可达
	StatusConnectionFailure = 601

	// StatusClientError 其他客户端错误: 不支持的协议、重定向过多、响应格式错误、读取响应失败等
	StatusClientError = 602
)

// StatusCategory 结果分类
type StatusCategory string

const (
	CategoryHTTP              StatusCategory = "http"               // 收到HTTP响应
	CategoryTimeout           StatusCategory = "timeout"            // 超时
	CategoryConnectionFailure StatusCategory = "connection_failure" // 连接失败
	CategoryClientError       StatusCategory = "client_error"       // 客户端错误
)

// CategorizeStatus 将状态码映射为分类
func CategorizeStatus(status int) StatusCategory {
	switch status {
	case StatusTimeout:
		return CategoryTimeout
	case StatusConnectionFailure:
		return CategoryConnectionFailure
	case StatusClientError:
		return CategoryClientError
	default:
		return CategoryHTTP
	}
}

// IsHTTPStatus 判断是否为合法的HTTP状态码范围
func IsHTTPStatus(status int) bool {
	return status >= 100 && status <= 599
}

// IsBroken 判断链接是否失效(非2xx/3xx或任意保留失败代码)
func IsBroken(status int) bool {
	return !IsHTTPStatus(status) || status >= 400
}
