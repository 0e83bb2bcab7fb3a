package serving

func GetServingClient(version int, configBytes []byte) ServingClient {
	switch version {
	case 1:
		return InitV1Client(configBytes)
	default:
		return nil
	}
}
