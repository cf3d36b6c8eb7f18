package launch

import (
	"net/url"
	"strings"

	"tokenLauncher/internal/model"
)

// Validate trims the request and checks the fields a launch needs.
// It returns the normalized request.
func Validate(req model.LaunchRequest) (model.LaunchRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Symbol = strings.TrimSpace(req.Symbol)
	req.Description = strings.TrimSpace(req.Description)
	req.Twitter = strings.TrimSpace(req.Twitter)
	req.Telegram = strings.TrimSpace(req.Telegram)
	req.Website = strings.TrimSpace(req.Website)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	if req.Name == "" || req.Symbol == "" {
		return req, validationError("name and symbol are required")
	}
	if req.ImageURL != "" {
		u, err := url.Parse(req.ImageURL)
		if err != nil {
			return req, validationError("image_url: %v", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return req, validationError("image_url must be an absolute http(s) url")
		}
	}
	return req, nil
}
