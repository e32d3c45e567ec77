package metric

import (
	"context"
	"time"

	"cityboard/src-server/model"
	"cityboard/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Appointment)(nil)).
		Where("title = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func appointmentCount(as *utils.AppState) (int, error) {
	count, err := as.BunDB.NewSelect().
		Model((*model.Appointment)(nil)).
		Count(context.Background())
	if err != nil {
		return 0, err
	}
	return count, nil
}
