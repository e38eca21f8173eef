package nginx

import "errors"

var (
	ErrProxyConfigInvalid = errors.New("proxy configuration invalid")
	ErrProxySiteInstall   = errors.New("proxy site install failed")
)
