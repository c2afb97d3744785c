package core

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/RecoveryAshes/linkaudit/internal/models"
)

// ClassifyError 将探测错误映射为保留状态码
// 分类顺序:
//  1. 超时(连接超时、TLS握手超时、配置的整体请求超时) -> StatusTimeout
//  2. 连接层失败(DNS、拒绝/重置连接、网络不可达、TLS握手失败) -> StatusConnectionFailure
//  3. 其他 -> StatusClientError
func ClassifyError(err error) int {
	switch {
	case err == nil:
		return models.StatusClientError
	case isTimeout(err):
		return models.StatusTimeout
	case isConnectionFailure(err):
		return models.StatusConnectionFailure
	default:
		return models.StatusClientError
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	// 服务端在返回响应前关闭连接
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	return isTLSFailure(err)
}

func isTLSFailure(err error) bool {
	var (
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	return errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}
