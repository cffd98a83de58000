package request

// InboundSmsWebhook is the form (or JSON) body of POST /webhook/sms.
type InboundSmsWebhook struct {
	From       string `form:"From" json:"From"`
	To         string `form:"To" json:"To"`
	Body       string `form:"Body" json:"Body"`
	MessageSid string `form:"MessageSid" json:"MessageSid"`
}

// StatusWebhook is the body of POST /webhook/status.
type StatusWebhook struct {
	MessageSid    string `form:"MessageSid" json:"MessageSid"`
	MessageStatus string `form:"MessageStatus" json:"MessageStatus"`
}

// AliyunSmsReport is one element of an Alibaba Cloud SmsReport push.
type AliyunSmsReport struct {
	PhoneNumber string `json:"phone_number"`
	SendTime    string `json:"send_time"`
	ReportTime  string `json:"report_time"`
	Success     bool   `json:"success"`
	ErrCode     string `json:"err_code"`
	ErrMsg      string `json:"err_msg"`
	SmsSize     string `json:"sms_size"`
	BizID       string `json:"biz_id"`
	OutID       string `json:"out_id"`
}

// AliyunSmsUp is one element of an Alibaba Cloud SmsUp push.
type AliyunSmsUp struct {
	PhoneNumber string `json:"phone_number"`
	SendTime    string `json:"send_time"`
	Content     string `json:"content"`
	SignName    string `json:"sign_name"`
	DestCode    string `json:"dest_code"`
	SequenceID  int64  `json:"sequence_id"`
}
