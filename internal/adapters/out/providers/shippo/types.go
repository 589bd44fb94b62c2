package shippo

type address struct {
	Name    string `json:"name,omitempty"`
	Street1 string `json:"street1,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type shipmentRequest struct {
	AddressFrom address  `json:"address_from"`
	AddressTo   address  `json:"address_to"`
	Parcels     []parcel `json:"parcels"`
	Async       bool     `json:"async"`
	Metadata    string   `json:"metadata,omitempty"`
}

type message struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Text   string `json:"text"`
}

type serviceLevel struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

type rate struct {
	ObjectID      string       `json:"object_id"`
	Amount        string       `json:"amount"`
	Currency      string       `json:"currency"`
	AmountLocal   string       `json:"amount_local"`
	CurrencyLocal string       `json:"currency_local"`
	Provider      string       `json:"provider"`
	ServiceLevel  serviceLevel `json:"servicelevel"`
	EstimatedDays int          `json:"estimated_days"`
}

type shipmentResponse struct {
	ObjectID string    `json:"object_id"`
	Status   string    `json:"status"`
	Rates    []rate    `json:"rates"`
	Messages []message `json:"messages"`
}

type transactionRequest struct {
	Rate          string `json:"rate"`
	LabelFileType string `json:"label_file_type"`
	Async         bool   `json:"async"`
}

type transactionResponse struct {
	ObjectID       string    `json:"object_id"`
	Status         string    `json:"status"`
	TrackingNumber string    `json:"tracking_number"`
	LabelURL       string    `json:"label_url"`
	Rate           string    `json:"rate"`
	Messages       []message `json:"messages"`
}

type substatus struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type trackingStatus struct {
	Status        string     `json:"status"`
	StatusDetails string     `json:"status_details"`
	StatusDate    string     `json:"status_date"`
	Substatus     *substatus `json:"substatus"`
}

type webhook struct {
	Event string `json:"event"`
	Data  struct {
		Carrier        string         `json:"carrier"`
		TrackingNumber string         `json:"tracking_number"`
		TrackingStatus trackingStatus `json:"tracking_status"`
	} `json:"data"`
}
