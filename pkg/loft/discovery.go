package loft

import "strings"

// Endpoints lists the public service endpoints of a platform instance, as
// served from its well-known discovery document.
type Endpoints struct {
	API               *HTTPEndpoint     `json:"api,omitempty"                  yaml:"api,omitempty"`
	Console           *HTTPEndpoint     `json:"console,omitempty"              yaml:"console,omitempty"`
	SSO               string            `json:"sso,omitempty"                  yaml:"sso,omitempty"`
	IssuerURL         string            `json:"issuerUrl,omitempty"            yaml:"issuerUrl,omitempty"`
	Registry          *RegistryEndpoint `json:"registry,omitempty"             yaml:"registry,omitempty"`
	CommandURL        string            `json:"commandUrl,omitempty"           yaml:"commandUrl,omitempty"`
	HTTP              *HTTPEndpoint     `json:"http,omitempty"                 yaml:"http,omitempty"`
	MQTT              *MQTTEndpoint     `json:"mqtt,omitempty"                 yaml:"mqtt,omitempty"`
	MQTTWS            *HTTPEndpoint     `json:"mqttWs,omitempty"               yaml:"mqttWs,omitempty"`
	MQTTIntegration   *MQTTEndpoint     `json:"mqttIntegration,omitempty"      yaml:"mqttIntegration,omitempty"`
	Websocket         *HTTPEndpoint     `json:"websocketIntegration,omitempty" yaml:"websocketIntegration,omitempty"`
	CoAP              *CoAPEndpoint     `json:"coap,omitempty"                 yaml:"coap,omitempty"`
	Kafka             *KafkaEndpoint    `json:"kafkaBootstrapServers,omitempty" yaml:"kafkaBootstrapServers,omitempty"`
	LocalCertificates []string          `json:"localCertificates,omitempty"    yaml:"localCertificates,omitempty"`
}

// TokenURL derives the OIDC token endpoint from the issuer URL. It returns
// the empty string when no issuer is configured.
func (e *Endpoints) TokenURL() string {
	if e.IssuerURL == "" {
		return ""
	}

	return strings.TrimSuffix(e.IssuerURL, "/") + "/protocol/openid-connect/token"
}

// HTTPEndpoint is a plain URL endpoint.
type HTTPEndpoint struct {
	URL string `json:"url" yaml:"url"`
}

// MQTTEndpoint is a host/port endpoint.
type MQTTEndpoint struct {
	Host string `json:"host" yaml:"host"`
	Port uint16 `json:"port" yaml:"port"`
}

// CoAPEndpoint is a plain URL endpoint for the CoAP protocol adapter.
type CoAPEndpoint struct {
	URL string `json:"url" yaml:"url"`
}

// KafkaEndpoint is a Kafka bootstrap servers endpoint.
type KafkaEndpoint struct {
	BootstrapServers string `json:"bootstrapServers" yaml:"bootstrapServers"`
}

// RegistryEndpoint points at the device registry API.
type RegistryEndpoint struct {
	URL string `json:"url" yaml:"url"`
}

// PlatformVersion reports the running platform release.
type PlatformVersion struct {
	Success bool   `json:"success" yaml:"success"`
	Version string `json:"version" yaml:"version"`
}
