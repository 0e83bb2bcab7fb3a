package serving

import "github.com/mlservingstack/go-sdk/pkg/client/httpclient"

type ClientV1 struct {
	ClientConfigs *ClientConfig
	HttpClient    *httpclient.HTTPClient
}
