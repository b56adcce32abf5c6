package repository

import (
	"context"
	"time"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func targetTable(t models.TargetType) (string, bool) {
	switch t {
	case models.TargetPost:
		return "posts", true
	case models.TargetReply:
		return "replies", true
	}
	return "", false
}

// scoreRow reads the denormalized score of a post or reply.
type scoreRow struct {
	ID        uint
	VoteScore int
}

var voteConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
}

// CastVote upserts the caller's vote on a target and rewrites the target's
// vote_score as the sum of all its votes, in one transaction. The target row
// is locked first so concurrent voters on the same target are serialized and
// each recompute sees every committed vote.
func (r *Repository) CastVote(ctx context.Context, userID uint, targetType models.TargetType, targetID uint, value int) (*models.VoteResult, error) {
	table, ok := targetTable(targetType)
	if !ok {
		return nil, utils.NewValidationError("invalid content type %q", targetType)
	}
	if !models.ValidVoteValue(value) {
		return nil, utils.NewValidationError("vote value must be -1, 0 or 1, got %d", value)
	}

	var result models.VoteResult
	cast := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// voter before target, the order DeleteUser locks in
			var voter models.User
			if err := tx.Clauses(forShare).Select("id").Take(&voter, userID).Error; err != nil {
				return lookupErr(err, "user", userID)
			}

			var target scoreRow
			err := tx.Table(table).Clauses(forUpdate).Select("id").Where("id = ?", targetID).Take(&target).Error
			if err != nil {
				return lookupErr(err, string(targetType), targetID)
			}

			vote := models.Vote{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				Value:      value,
			}
			if err := tx.Clauses(voteConflict).Create(&vote).Error; err != nil {
				return err
			}

			score, err := sumVotes(tx, targetType, targetID)
			if err != nil {
				return err
			}
			if err := tx.Table(table).Where("id = ?", targetID).UpdateColumn("vote_score", score).Error; err != nil {
				return err
			}

			result = models.VoteResult{NewScore: score, UserVote: value}
			return nil
		})
	}

	err := cast()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent first vote won the insert; the retry takes the update path
		logrus.WithFields(logrus.Fields{"user_id": userID, "target": targetType, "target_id": targetID}).
			Warn("vote insert raced, retrying as update")
		err = cast()
	}
	if err != nil {
		return nil, passThrough(err, "cast vote")
	}
	return &result, nil
}

// GetVoteStatus returns the caller's current vote on a target, 0 if none.
func (r *Repository) GetVoteStatus(ctx context.Context, userID uint, targetType models.TargetType, targetID uint) (int, error) {
	if _, ok := targetTable(targetType); !ok {
		return 0, utils.NewValidationError("invalid content type %q", targetType)
	}

	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, utils.NewDatabaseError("load vote", err)
	}
	return vote.Value, nil
}

func sumVotes(tx *gorm.DB, targetType models.TargetType, targetID uint) (int, error) {
	var sum int64
	err := tx.Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Scan(&sum).Error
	return int(sum), err
}

func deleteVotes(tx *gorm.DB, targetType models.TargetType, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("target_type = ? AND target_id IN ?", targetType, ids).Delete(&models.Vote{}).Error
}

// RepairScore recomputes a target's score from the ledger and rewrites the
// stored value when it has drifted. It reports whether a repair happened.
func (r *Repository) RepairScore(ctx context.Context, target models.VoteTarget) (bool, int, error) {
	table, ok := targetTable(target.Type)
	if !ok {
		return false, 0, utils.NewValidationError("invalid content type %q", target.Type)
	}

	var repaired bool
	var score int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row scoreRow
		err := tx.Table(table).Clauses(forUpdate).Select("id", "vote_score").Where("id = ?", target.ID).Take(&row).Error
		if err != nil {
			return lookupErr(err, string(target.Type), target.ID)
		}

		sum, err := sumVotes(tx, target.Type, target.ID)
		if err != nil {
			return err
		}
		score = sum
		if row.VoteScore == sum {
			return nil
		}
		repaired = true
		return tx.Table(table).Where("id = ?", target.ID).UpdateColumn("vote_score", sum).Error
	})
	if err != nil {
		return false, 0, passThrough(err, "repair score")
	}
	return repaired, score, nil
}

// VotedTargetsSince lists the distinct targets whose votes changed after since.
func (r *Repository) VotedTargetsSince(ctx context.Context, since time.Time) ([]models.VoteTarget, error) {
	var rows []struct {
		TargetType models.TargetType
		TargetID   uint
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Distinct("target_type", "target_id").
		Where("updated_at >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, utils.NewDatabaseError("list voted targets", err)
	}

	targets := make([]models.VoteTarget, len(rows))
	for i, row := range rows {
		targets[i] = models.VoteTarget{Type: row.TargetType, ID: row.TargetID}
	}
	return targets, nil
}

// SumVotes returns the ledger total for a target without touching the
// stored score.
func (r *Repository) SumVotes(ctx context.Context, target models.VoteTarget) (int, error) {
	sum, err := sumVotes(r.db.WithContext(ctx), target.Type, target.ID)
	if err != nil {
		return 0, utils.NewDatabaseError("sum votes", err)
	}
	return sum, nil
}
