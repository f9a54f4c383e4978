package panel

// Inbound is one panel-side listener configuration clients attach to.
type Inbound struct {
	ID       int64  `json:"id"`
	Remark   string `json:"remark"`
	Protocol string `json:"protocol"`
}

// ClientRecord is the client payload accepted by the panel's addClient call.
// Zero limits mean unlimited, matching the panel defaults.
type ClientRecord struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	LimitIP    int    `json:"limitIp"`
	TotalGB    int64  `json:"totalGB"`
	ExpiryTime int64  `json:"expiryTime"`
	Enable     bool   `json:"enable"`
	TgID       string `json:"tgId"`
	SubID      string `json:"subId"`
}

// NewClientRecord builds an enabled, unlimited client for the given identity.
func NewClientRecord(uuid, email string) ClientRecord {
	return ClientRecord{
		ID:     uuid,
		Email:  email,
		Enable: true,
	}
}

// apiResponse is the envelope every panel endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

type inboundsResponse struct {
	apiResponse
	Obj []Inbound `json:"obj"`
}
