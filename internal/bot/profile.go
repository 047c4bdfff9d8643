package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ProfileAPI interface {
	GetUserProfilePhotos(config tgbotapi.UserProfilePhotosConfig) (tgbotapi.UserProfilePhotos, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Profiles looks up user profile photos for the mini app.
type Profiles struct {
	api ProfileAPI
}

func NewProfiles(api ProfileAPI) *Profiles {
	return &Profiles{api: api}
}

// AvatarPath returns the file path of the latest profile photo, or "" when
// the user has none.
func (p *Profiles) AvatarPath(ctx context.Context, telegramID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	photos, err := p.api.GetUserProfilePhotos(tgbotapi.UserProfilePhotosConfig{
		UserID: telegramID,
		Limit:  1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get user photos: %w", err)
	}

	if len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	file, err := p.api.GetFile(tgbotapi.FileConfig{
		FileID: photos.Photos[0][0].FileID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get file: %w", err)
	}

	return file.FilePath, nil
}
