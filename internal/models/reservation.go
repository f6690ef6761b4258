// Package models holds the typed representation of vendor reservation data
// and the report shapes computed from it.
package models

// Payload is the vendor response after it has been mapped by an adapter.
// Both upstream shapes decode into it, so the aggregators see one model.
type Payload struct {
	Reservations  []Reservation  `json:"reservations"`
	Cancellations []Cancellation `json:"cancellations"`
}

// Reservation groups the room transactions booked under one reservation id.
type Reservation struct {
	ID           string        `json:"id"`
	Source       Text          `json:"source"`
	Nationality  Text          `json:"nationality"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is one booked room within a reservation.
type Transaction struct {
	ID            string       `json:"id"`
	ArrivalDate   string       `json:"arrival_date"`
	DepartureDate string       `json:"departure_date"`
	CancelDate    string       `json:"cancel_date,omitempty"`
	RoomTypeCode  Text         `json:"room_type_code"`
	RoomTypeName  Text         `json:"room_type_name"`
	Source        Text         `json:"source"`
	Nationality   Text         `json:"nationality"`
	RentalInfo    []RentalInfo `json:"rental_info"`
}

// RentalInfo is a single night billed against a transaction.
type RentalInfo struct {
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD
	Rent          Amount `json:"rent"`
	RoomTypeCode  Text   `json:"room_type_code"`
	RoomTypeName  Text   `json:"room_type_name"`
}

// Cancellation records that a reservation was cancelled on CancelDate.
type Cancellation struct {
	ReservationID string `json:"reservation_id"`
	CancelDate    string `json:"cancel_date"` // YYYY-MM-DD
}

// SourceKey returns the booking source of the transaction, falling back to
// the reservation-level value.
func (t *Transaction) SourceKey(r *Reservation) Text {
	if !t.Source.Blank() {
		return t.Source
	}
	return r.Source
}

// NationalityKey mirrors SourceKey for the guest nationality.
func (t *Transaction) NationalityKey(r *Reservation) Text {
	if !t.Nationality.Blank() {
		return t.Nationality
	}
	return r.Nationality
}
