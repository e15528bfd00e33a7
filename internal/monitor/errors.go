package monitor

import (
	"errors"
	"net"
	"net/url"
)

// ErrDiscoveryFailed indica que o link não pôde ser lido como página de produto
var ErrDiscoveryFailed = errors.New("could not read product link")

// isTransportError reconhece falhas de rede da requisição (DNS, conexão, timeout)
func isTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
