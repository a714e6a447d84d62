// Package models defines the API data types shared across commands.
package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the account type of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleOwner Role = "OWNER"
)

var upper = cases.Upper(language.Und)

// NormalizeRole maps a role string from the backend, which may arrive in
// mixed case, to its canonical upper-case form.
func NormalizeRole(s string) Role {
	return Role(upper.String(s))
}

// UserProfile is the authenticated user.
type UserProfile struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// Business is a bookable business listing.
type Business struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"ownerId"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Status        string   `json:"status,omitempty"`
	AverageRating float64  `json:"averageRating,omitempty"`
	ReviewCount   int      `json:"reviewCount,omitempty"`
	Images        []string `json:"images,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// Service is a bookable service offered by a business.
type Service struct {
	ID          string  `json:"id"`
	BusinessID  string  `json:"businessId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"durationMin"`
	IsActive    bool    `json:"isActive,omitempty"`
}

// Employee is a staff member of a business.
type Employee struct {
	ID         string `json:"id"`
	BusinessID string `json:"businessId"`
	FullName   string `json:"fullName"`
	PhotoURL   string `json:"photoUrl,omitempty"`
	IsActive   bool   `json:"isActive,omitempty"`
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentApproved  AppointmentStatus = "APPROVED"
	AppointmentRejected  AppointmentStatus = "REJECTED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// Appointment is a booking of a service with an employee.
type Appointment struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customerId,omitempty"`
	BusinessID      string            `json:"businessId"`
	EmployeeID      string            `json:"employeeId"`
	ServiceID       string            `json:"serviceId"`
	Date            string            `json:"date,omitempty"`
	TimeSlot        string            `json:"timeSlot,omitempty"`
	Status          AppointmentStatus `json:"status"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	CreatedAt       string            `json:"createdAt,omitempty"`

	// Relations the backend may include
	Business *Business `json:"business,omitempty"`
	Employee *Employee `json:"employee,omitempty"`
	Service  *Service  `json:"service,omitempty"`
}

// Review is a customer review of a business.
type Review struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
	BusinessID    string `json:"businessId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

// DashboardStats summarizes an owner's business activity.
type DashboardStats struct {
	TotalAppointments   int     `json:"totalAppointments"`
	PendingAppointments int     `json:"pendingAppointments"`
	TodayAppointments   int     `json:"todayAppointments"`
	AverageRating       float64 `json:"averageRating"`
	ReviewCount         int     `json:"reviewCount"`
}
