package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

const collectionLedger = "ledger"

// ledgerDocID is the _id of the single snapshot document. The ledger is one
// exclusively-owned state object, so it persists as one document replaced
// wholesale on every save.
const ledgerDocID = "treasury"

// LedgerStore implements ports.LedgerStore on a MongoDB singleton document.
type LedgerStore struct {
	col *mongo.Collection
}

func NewLedgerStore(db *mongo.Database) *LedgerStore {
	return &LedgerStore{col: db.Collection(collectionLedger)}
}

type memberDoc struct {
	Identity     string    `bson:"identity"`
	Roles        []string  `bson:"roles"`
	Contribution int64     `bson:"contribution"`
	Stake        int64     `bson:"stake"`
	Voted        []uint64  `bson:"voted"`
	JoinedAt     time.Time `bson:"joined_at"`
}

type voteDoc struct {
	Voter  string    `bson:"voter"`
	Choice bool      `bson:"choice"`
	CastAt time.Time `bson:"cast_at"`
}

type proposalDoc struct {
	ID          uint64    `bson:"id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Proposer    string    `bson:"proposer"`
	Beneficiary string    `bson:"beneficiary"`
	Amount      int64     `bson:"amount"`
	UpVotes     int64     `bson:"up_votes"`
	DownVotes   int64     `bson:"down_votes"`
	Deadline    time.Time `bson:"deadline"`
	Passed      bool      `bson:"passed"`
	Paid        bool      `bson:"paid"`
	Executor    string    `bson:"executor,omitempty"`
	Votes       []voteDoc `bson:"votes"`
	CreatedAt   time.Time `bson:"created_at"`
}

type ballotDoc struct {
	Voter    string `bson:"voter"`
	Proposal uint64 `bson:"proposal"`
}

type ledgerDoc struct {
	ID        string        `bson:"_id"`
	Deployer  string        `bson:"deployer"`
	Pool      int64         `bson:"pool"`
	Members   []memberDoc   `bson:"members"`
	Proposals []proposalDoc `bson:"proposals"`
	Ballots   []ballotDoc   `bson:"ballots"`
	SavedAt   time.Time     `bson:"saved_at"`
}

// Load returns the persisted ledger, or (nil, nil) when no snapshot exists.
func (s *LedgerStore) Load(ctx context.Context) (*domain.Ledger, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ledgerDoc
	err := s.col.FindOne(ctx, bson.M{"_id": ledgerDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return fromDoc(&doc), nil
}

// Save replaces the snapshot document wholesale.
func (s *LedgerStore) Save(ctx context.Context, ledger *domain.Ledger) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(ledger)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": ledgerDocID}, doc, opts); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func toDoc(l *domain.Ledger) *ledgerDoc {
	doc := &ledgerDoc{
		ID:       ledgerDocID,
		Deployer: string(l.Deployer),
		Pool:     l.Pool,
		SavedAt:  time.Now().UTC(),
	}
	for _, m := range l.Members {
		roles := make([]string, 0, len(m.Roles))
		for _, tag := range m.Roles.Tags() {
			roles = append(roles, string(tag))
		}
		doc.Members = append(doc.Members, memberDoc{
			Identity:     string(m.Identity),
			Roles:        roles,
			Contribution: m.Contribution,
			Stake:        m.Stake,
			Voted:        m.Voted,
			JoinedAt:     m.JoinedAt,
		})
	}
	for _, p := range l.Proposals {
		votes := make([]voteDoc, len(p.Votes))
		for i, v := range p.Votes {
			votes[i] = voteDoc{Voter: string(v.Voter), Choice: v.Choice, CastAt: v.CastAt}
		}
		doc.Proposals = append(doc.Proposals, proposalDoc{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Proposer:    string(p.Proposer),
			Beneficiary: string(p.Beneficiary),
			Amount:      p.Amount,
			UpVotes:     p.UpVotes,
			DownVotes:   p.DownVotes,
			Deadline:    p.Deadline,
			Passed:      p.Passed,
			Paid:        p.Paid,
			Executor:    string(p.Executor),
			Votes:       votes,
			CreatedAt:   p.CreatedAt,
		})
	}
	for key := range l.Ballots {
		doc.Ballots = append(doc.Ballots, ballotDoc{Voter: string(key.Voter), Proposal: key.Proposal})
	}
	return doc
}

func fromDoc(doc *ledgerDoc) *domain.Ledger {
	l := domain.NewLedger(domain.Identity(doc.Deployer))
	l.Pool = doc.Pool
	for _, md := range doc.Members {
		roles := domain.NewRoleSet()
		for _, tag := range md.Roles {
			roles.Grant(domain.RoleTag(tag))
		}
		l.Members[domain.Identity(md.Identity)] = &domain.Member{
			Identity:     domain.Identity(md.Identity),
			Roles:        roles,
			Contribution: md.Contribution,
			Stake:        md.Stake,
			Voted:        md.Voted,
			JoinedAt:     md.JoinedAt,
		}
	}
	for _, pd := range doc.Proposals {
		votes := make([]domain.Vote, len(pd.Votes))
		for i, vd := range pd.Votes {
			votes[i] = domain.Vote{Voter: domain.Identity(vd.Voter), Choice: vd.Choice, CastAt: vd.CastAt}
		}
		l.Proposals = append(l.Proposals, &domain.Proposal{
			ID:          pd.ID,
			Title:       pd.Title,
			Description: pd.Description,
			Proposer:    domain.Identity(pd.Proposer),
			Beneficiary: domain.Identity(pd.Beneficiary),
			Amount:      pd.Amount,
			UpVotes:     pd.UpVotes,
			DownVotes:   pd.DownVotes,
			Deadline:    pd.Deadline,
			Passed:      pd.Passed,
			Paid:        pd.Paid,
			Executor:    domain.Identity(pd.Executor),
			Votes:       votes,
			CreatedAt:   pd.CreatedAt,
		})
	}
	for _, bd := range doc.Ballots {
		l.Ballots[domain.BallotKey{Voter: domain.Identity(bd.Voter), Proposal: bd.Proposal}] = struct{}{}
	}
	return l
}
