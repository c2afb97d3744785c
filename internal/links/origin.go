package links

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// OriginKey 根据URL计算源站分组键 "scheme://host"
// 协议和主机名统一转为小写,国际化域名转为ASCII(punycode)形式,
// 因此 HTTP://Example.com 与 http://example.com 属于同一源站。
// 端口不参与分组: 同一主机的不同端口共享一个顺序执行的worker。
func OriginKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + normalizeHost(u.Hostname())
}

// normalizeHost 规范化主机名
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return host
	}

	// IP地址(含IPv6)无需IDNA转换
	if strings.Contains(host, ":") {
		return host
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return host
	}
	return ascii
}
