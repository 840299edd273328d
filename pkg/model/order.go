package model

import "time"

const (
	ServiceFlightReservation = "flight-reservation"
	ServiceHotelBooking      = "hotel-booking"
	ServiceTravelInsurance   = "travel-insurance"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// CustomerInfo is the contact block inside the booking details sent by the
// form. It is upserted into the Customers collection keyed by email.
type CustomerInfo struct {
	FirstName string `json:"firstName" bson:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" bson:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" bson:"email" validate:"required,email"`
	Phone     string `json:"phone" bson:"phone" validate:"required,min=7,max=20"`
}

type Customer struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type Traveler struct {
	FirstName      string `json:"firstName" bson:"first_name" validate:"required,min=1,max=100"`
	LastName       string `json:"lastName" bson:"last_name" validate:"required,min=1,max=100"`
	DateOfBirth    string `json:"dateOfBirth" bson:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Nationality    string `json:"nationality" bson:"nationality" validate:"required,min=2,max=60"`
	PassportNumber string `json:"passportNumber,omitempty" bson:"passport_number,omitempty" validate:"omitempty,max=20"`
}

type FlightDetails struct {
	FromCity      string `json:"fromCity" bson:"from_city" validate:"required,min=2,max=100"`
	ToCity        string `json:"toCity" bson:"to_city" validate:"required,min=2,max=100"`
	DepartureDate string `json:"departureDate" bson:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate,omitempty" bson:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TripType      string `json:"tripType" bson:"trip_type" validate:"required,oneof=one-way round-trip"`
}

type HotelDetails struct {
	City         string `json:"city" bson:"city" validate:"required,min=2,max=100"`
	CheckInDate  string `json:"checkInDate" bson:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"checkOutDate" bson:"check_out_date" validate:"required,datetime=2006-01-02"`
	Rooms        int    `json:"rooms" bson:"rooms" validate:"required,min=1,max=10"`
}

type InsuranceDetails struct {
	StartDate    string `json:"startDate" bson:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" bson:"end_date" validate:"required,datetime=2006-01-02"`
	CoverageArea string `json:"coverageArea" bson:"coverage_area" validate:"required,min=2,max=100"`
}

// BookingDetails is the concrete schema of the opaque bag the broker carries.
// Exactly one of Flight/Hotel/Insurance must be present and it must match the
// session's service; that cross-check lives in the orders validator.
type BookingDetails struct {
	Customer  CustomerInfo      `json:"customer" validate:"required"`
	Travelers []Traveler        `json:"travelers" validate:"required,min=1,max=20,dive"`
	Flight    *FlightDetails    `json:"flight,omitempty" validate:"omitempty"`
	Hotel     *HotelDetails     `json:"hotel,omitempty" validate:"omitempty"`
	Insurance *InsuranceDetails `json:"insurance,omitempty" validate:"omitempty"`
}

type Order struct {
	ID            string            `json:"id,omitempty" bson:"_id,omitempty"`
	OrderNumber   string            `json:"order_number" bson:"order_number"`
	Service       string            `json:"service" bson:"service"`
	Status        string            `json:"status" bson:"status"`
	PaymentMethod string            `json:"payment_method" bson:"payment_method"`
	TotalAmount   float64           `json:"total_amount" bson:"total_amount"`
	CustomerID    string            `json:"customer_id" bson:"customer_id"`
	CustomerEmail string            `json:"customer_email" bson:"customer_email"`
	SessionID     string            `json:"session_id" bson:"session_id"`
	Travelers     []Traveler        `json:"travelers" bson:"travelers"`
	Flight        *FlightDetails    `json:"flight,omitempty" bson:"flight,omitempty"`
	Hotel         *HotelDetails     `json:"hotel,omitempty" bson:"hotel,omitempty"`
	Insurance     *InsuranceDetails `json:"insurance,omitempty" bson:"insurance,omitempty"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
}

// OrderFilter narrows admin listings and CSV exports.
type OrderFilter struct {
	Service string
	Status  string
	Email   string
	From    *time.Time
	To      *time.Time
}

type FinalizeOrderRequest struct {
	Token         string `json:"token" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,min=2,max=40"`
}

type FinalizeOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// OrderEvent is the message published to the order events topic after an
// order is persisted.
type OrderEvent struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Service       string    `json:"service"`
	CustomerEmail string    `json:"customer_email"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

const EventTypeOrderCreated = "order.created"
