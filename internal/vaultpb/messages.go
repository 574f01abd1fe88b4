package vaultpb

// PingRequest checks that the server is reachable.
type PingRequest struct{}

func (m *PingRequest) MarshalWire() ([]byte, error) { return nil, nil }

func (m *PingRequest) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		d.skip()
	}
	return d.err
}

type PingResponse struct {
	Status string
}

func (m *PingResponse) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Status)
	return e.b, nil
}

func (m *PingResponse) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Status = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

// GetConfigRequest asks for the public key derivation parameters.
type GetConfigRequest struct{}

func (m *GetConfigRequest) MarshalWire() ([]byte, error) { return nil, nil }

func (m *GetConfigRequest) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		d.skip()
	}
	return d.err
}

// GetConfigResponse carries the non-secret salts. Empty salts mean the
// legacy scheme where the username salts both keys.
type GetConfigResponse struct {
	Version       string
	LocalKeySalt  string
	RemoteKeySalt string
	Difficulty    int64
	Demo          bool
}

func (m *GetConfigResponse) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Version)
	e.str(2, m.LocalKeySalt)
	e.str(3, m.RemoteKeySalt)
	e.uint(4, uint64(m.Difficulty))
	e.boolean(5, m.Demo)
	return e.b, nil
}

func (m *GetConfigResponse) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Version = d.str()
		case 2:
			m.LocalKeySalt = d.str()
		case 3:
			m.RemoteKeySalt = d.str()
		case 4:
			m.Difficulty = int64(d.uint())
		case 5:
			m.Demo = d.boolean()
		default:
			d.skip()
		}
	}
	return d.err
}

// PullRequest fetches the stored ciphertext of a user.
type PullRequest struct {
	Username   string
	RemoteKey  string
	TfaMethod  string
	TfaRequest string
}

func (m *PullRequest) GetUsername() string { return m.Username }

func (m *PullRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Username)
	e.str(2, m.RemoteKey)
	e.str(3, m.TfaMethod)
	e.str(4, m.TfaRequest)
	return e.b, nil
}

func (m *PullRequest) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Username = d.str()
		case 2:
			m.RemoteKey = d.str()
		case 3:
			m.TfaMethod = d.str()
		case 4:
			m.TfaRequest = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

// PullResponse carries the envelope, empty for a user with no data.
type PullResponse struct {
	Data     string
	TfaToken string
}

func (m *PullResponse) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Data)
	e.str(2, m.TfaToken)
	return e.b, nil
}

func (m *PullResponse) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Data = d.str()
		case 2:
			m.TfaToken = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

// PushRequest replaces the stored ciphertext if OldHash matches the stored
// fingerprint or Force is set. A non-empty NewPassword rotates the remote
// key in the same write.
type PushRequest struct {
	Username    string
	RemoteKey   string
	NewData     string
	NewHash     string
	OldHash     string
	NewPassword string
	Force       bool
	TfaMethod   string
	TfaRequest  string
}

func (m *PushRequest) GetUsername() string { return m.Username }

func (m *PushRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Username)
	e.str(2, m.RemoteKey)
	e.str(3, m.NewData)
	e.str(4, m.NewHash)
	e.str(5, m.OldHash)
	e.str(6, m.NewPassword)
	e.boolean(7, m.Force)
	e.str(8, m.TfaMethod)
	e.str(9, m.TfaRequest)
	return e.b, nil
}

func (m *PushRequest) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Username = d.str()
		case 2:
			m.RemoteKey = d.str()
		case 3:
			m.NewData = d.str()
		case 4:
			m.NewHash = d.str()
		case 5:
			m.OldHash = d.str()
		case 6:
			m.NewPassword = d.str()
		case 7:
			m.Force = d.boolean()
		case 8:
			m.TfaMethod = d.str()
		case 9:
			m.TfaRequest = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

type PushResponse struct {
	TfaToken string
}

func (m *PushResponse) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.TfaToken)
	return e.b, nil
}

func (m *PushResponse) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.TfaToken = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

// SetupTfaRequest enables TOTP for a user once Code matches Secret.
type SetupTfaRequest struct {
	Username  string
	RemoteKey string
	Secret    string
	Code      string
}

func (m *SetupTfaRequest) GetUsername() string { return m.Username }

func (m *SetupTfaRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.str(1, m.Username)
	e.str(2, m.RemoteKey)
	e.str(3, m.Secret)
	e.str(4, m.Code)
	return e.b, nil
}

func (m *SetupTfaRequest) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		switch d.num {
		case 1:
			m.Username = d.str()
		case 2:
			m.RemoteKey = d.str()
		case 3:
			m.Secret = d.str()
		case 4:
			m.Code = d.str()
		default:
			d.skip()
		}
	}
	return d.err
}

type SetupTfaResponse struct{}

func (m *SetupTfaResponse) MarshalWire() ([]byte, error) { return nil, nil }

func (m *SetupTfaResponse) UnmarshalWire(b []byte) error {
	d := decoder{b: b}
	for d.next() {
		d.skip()
	}
	return d.err
}
