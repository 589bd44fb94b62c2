package easypost

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
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

type options struct {
	Currency string `json:"currency,omitempty"`
}

type shipmentRequest struct {
	ToAddress   address  `json:"to_address"`
	FromAddress address  `json:"from_address"`
	Parcel      parcel   `json:"parcel"`
	Reference   string   `json:"reference,omitempty"`
	Options     *options `json:"options,omitempty"`
}

type shipmentEnvelope struct {
	Shipment shipmentRequest `json:"shipment"`
}

type rate struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	Rate         string `json:"rate"`
	Currency     string `json:"currency"`
	DeliveryDays *int   `json:"delivery_days"`
}

type postageLabel struct {
	LabelURL string `json:"label_url"`
}

type shipmentResponse struct {
	ID           string        `json:"id"`
	Rates        []rate        `json:"rates"`
	TrackingCode string        `json:"tracking_code"`
	PostageLabel *postageLabel `json:"postage_label"`
	SelectedRate *rate         `json:"selected_rate"`
}

type rateRef struct {
	ID string `json:"id"`
}

type buyRequest struct {
	Rate rateRef `json:"rate"`
}

type event struct {
	Description string `json:"description"`
	Result      struct {
		TrackingCode string `json:"tracking_code"`
		Status       string `json:"status"`
		StatusDetail string `json:"status_detail"`
		ShipmentID   string `json:"shipment_id"`
		Carrier      string `json:"carrier"`
		UpdatedAt    string `json:"updated_at"`
	} `json:"result"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Errors  []fieldError `json:"errors"`
	} `json:"error"`
}
