package proxy

// 为浏览器会话选择代理服务器，多个代理地址按轮询方式分配给每次启动的浏览器

import (
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
)

type ProxyFunc func() (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

// 按轮询顺序返回下一个代理地址
func (r *roundRobinSwitcher) GetProxy() (*url.URL, error) {
	if len(r.proxyURLs) == 0 {
		return nil, errors.New("empty proxy urls")
	}
	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]
	return u, nil
}

/*
输入一组代理地址，输出一个代理选择函数和一个error

地址必须带scheme和host（例如socks5://127.0.0.1:1080），否则Chrome无法识别，直接返回错误
*/
func RoundRobinProxySwitcher(proxyURLs ...string) (ProxyFunc, error) {
	if len(proxyURLs) < 1 {
		return nil, errors.New("Proxy URL list is empty")
	}
	urls := make([]*url.URL, len(proxyURLs))
	for i, u := range proxyURLs {
		parsedU, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		if parsedU.Scheme == "" || parsedU.Host == "" {
			return nil, fmt.Errorf("invalid proxy url:%q", u)
		}
		urls[i] = parsedU
	}
	return (&roundRobinSwitcher{urls, 0}).GetProxy, nil
}
