package client

import (
	"context"
	"fmt"
	"net/url"
	"salonbook/pkg/model"
	"strconv"
)

// BookingClient talks to the booking engine over HTTP. Non-2xx responses are returned as *APIError.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) Slots(ctx context.Context, staffID string, date model.Date, duration, granularity int) ([]model.TimeOfDay, error) {
	q := url.Values{}
	q.Set("date", date.String())
	q.Set("duration", strconv.Itoa(duration))
	if granularity > 0 {
		q.Set("granularity", strconv.Itoa(granularity))
	}

	path := fmt.Sprintf("/api/v1/staff/%s/slots?%s", url.PathEscape(staffID), q.Encode())
	var slots []model.TimeOfDay
	if err := c.get(ctx, path, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *BookingClient) Create(ctx context.Context, body model.CreateBookingRequest) (*model.Booking, error) {
	var booking model.Booking
	if err := c.post(ctx, "/api/v1/bookings", body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := c.get(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) Search(ctx context.Context, staffID string, date model.Date) ([]*model.Booking, error) {
	q := url.Values{}
	q.Set("staff_id", staffID)
	q.Set("date", date.String())

	var bookings []*model.Booking
	if err := c.get(ctx, "/api/v1/bookings/search?"+q.Encode(), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) Cancel(ctx context.Context, id, reason string) (*model.CancelResult, error) {
	var result model.CancelResult
	body := model.CancelBookingRequest{Reason: reason}
	if err := c.post(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BookingClient) Reschedule(ctx context.Context, id string, body model.RescheduleRequest) (*model.Booking, error) {
	var booking model.Booking
	if err := c.post(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/reschedule", body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) get(ctx context.Context, path string, target any) error {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return err
	}
	return decode(resp, target)
}

func (c *BookingClient) post(ctx context.Context, path string, body, target any) error {
	resp, err := c.httpClient.POST(ctx, path, body)
	if err != nil {
		return err
	}
	return decode(resp, target)
}

func decode(resp *Response, target any) error {
	if err := AsAPIError(resp); err != nil {
		return err
	}
	return resp.DecodeData(target)
}
