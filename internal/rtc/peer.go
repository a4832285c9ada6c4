package rtc

import (
	"github.com/pion/interceptor"
	pion "github.com/pion/webrtc/v4"

	"github.com/HarshithaPadmanabha/StudyHub/internal/config"
)

// ICEConfiguration builds the peer connection configuration from cfg. Relay
// is forced when a TURN server is configured and either the user asked for it
// or the network looks tunneled.
func ICEConfiguration(cfg *config.Config, forceRelay func() bool) pion.Configuration {
	var iceServers []pion.ICEServer
	if stun := cfg.GetSTUNServers(); stun != nil {
		iceServers = append(iceServers, pion.ICEServer{URLs: stun})
	}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && (cfg.ForceRelay || (forceRelay != nil && forceRelay())) {
		policy = pion.ICETransportPolicyRelay
	}

	return pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	}
}

// newAPI registers the default codecs and interceptors on a fresh engine.
func newAPI(settings pion.SettingEngine) (*pion.API, error) {
	m := &pion.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	registry := &interceptor.Registry{}
	if err := pion.RegisterDefaultInterceptors(m, registry); err != nil {
		return nil, err
	}

	return pion.NewAPI(
		pion.WithMediaEngine(m),
		pion.WithInterceptorRegistry(registry),
		pion.WithSettingEngine(settings),
	), nil
}
