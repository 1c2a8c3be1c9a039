package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillmeat/skillmeat-cli/internal/artifact"
	"github.com/skillmeat/skillmeat-cli/internal/collection"
	"github.com/skillmeat/skillmeat-cli/util/common/errors"
)

func skillConflict(name string) Conflict {
	return Conflict{
		Existing: artifact.Artifact{Name: name, Type: artifact.TypeSkill, Version: "1.0.0"},
		Incoming: ManifestEntry{Name: name, Type: "skill", Path: "skills/" + name, Version: "2.0.0"},
	}
}

func TestParseStrategyName(t *testing.T) {
	for _, valid := range []string{"merge", "fork", "skip", "interactive"} {
		name, err := ParseStrategyName(valid)
		require.NoError(t, err)
		assert.Equal(t, StrategyName(valid), name)
	}

	_, err := ParseStrategyName("overwrite")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "overwrite")
}

func TestMergeStrategy(t *testing.T) {
	d, err := MergeStrategy{}.Resolve(skillConflict("review"), &collection.Collection{})
	require.NoError(t, err)
	assert.Equal(t, ResolutionMerge, d.Resolution)
	assert.Equal(t, "review", d.ArtifactName)
	assert.Equal(t, artifact.TypeSkill, d.ArtifactType)
	assert.Empty(t, d.NewName)
}

func TestSkipStrategy(t *testing.T) {
	d, err := SkipStrategy{}.Resolve(skillConflict("review"), &collection.Collection{})
	require.NoError(t, err)
	assert.Equal(t, ResolutionSkip, d.Resolution)
}

func TestForkStrategy_NewName(t *testing.T) {
	col := &collection.Collection{}
	col.Add(artifact.Artifact{Name: "review", Type: artifact.TypeSkill})

	d, err := NewForkStrategy("").Resolve(skillConflict("review"), col)
	require.NoError(t, err)
	assert.Equal(t, ResolutionFork, d.Resolution)
	assert.Equal(t, "review-imported", d.NewName)
}

func TestForkStrategy_ProbesCollection(t *testing.T) {
	col := &collection.Collection{}
	col.Add(artifact.Artifact{Name: "review", Type: artifact.TypeSkill})
	col.Add(artifact.Artifact{Name: "review-imported", Type: artifact.TypeSkill})
	col.Add(artifact.Artifact{Name: "review-imported-1", Type: artifact.TypeSkill})

	d, err := NewForkStrategy("").Resolve(skillConflict("review"), col)
	require.NoError(t, err)
	assert.Equal(t, "review-imported-2", d.NewName)
}

func TestForkStrategy_BatchNamesStayUnique(t *testing.T) {
	col := &collection.Collection{}
	col.Add(artifact.Artifact{Name: "review", Type: artifact.TypeSkill})

	s := NewForkStrategy("")
	first, err := s.Resolve(skillConflict("review"), col)
	require.NoError(t, err)
	second, err := s.Resolve(skillConflict("review"), col)
	require.NoError(t, err)

	assert.Equal(t, "review-imported", first.NewName)
	assert.Equal(t, "review-imported-1", second.NewName)
}

func TestForkStrategy_SameNameDifferentTypes(t *testing.T) {
	col := &collection.Collection{}
	s := NewForkStrategy("")

	skill, err := s.Resolve(skillConflict("review"), col)
	require.NoError(t, err)

	cmdConflict := Conflict{
		Existing: artifact.Artifact{Name: "review", Type: artifact.TypeCommand},
		Incoming: ManifestEntry{Name: "review", Type: "command", Path: "commands/review.md"},
	}
	cmd, err := s.Resolve(cmdConflict, col)
	require.NoError(t, err)

	// Identity is (name, type): the same forked name is fine across types.
	assert.Equal(t, "review-imported", skill.NewName)
	assert.Equal(t, "review-imported", cmd.NewName)
}

func TestForkStrategy_CustomSuffix(t *testing.T) {
	d, err := NewForkStrategy("-bundle").Resolve(skillConflict("review"), &collection.Collection{})
	require.NoError(t, err)
	assert.Equal(t, "review-bundle", d.NewName)
}

// fakePrompter returns scripted answers in order.
type fakePrompter struct {
	answers []Resolution
	applyAt int // 1-based call index that also returns applyAll; 0 disables
	calls   int
	err     error
}

func (p *fakePrompter) Choose(artifact.Artifact, ManifestEntry) (Resolution, bool, error) {
	p.calls++
	if p.err != nil {
		return "", false, p.err
	}
	answer := p.answers[p.calls-1]
	return answer, p.calls == p.applyAt, nil
}

func TestInteractiveStrategy_PromptsPerConflict(t *testing.T) {
	prompter := &fakePrompter{answers: []Resolution{ResolutionSkip, ResolutionMerge}}
	s := NewInteractiveStrategy(prompter, "")
	col := &collection.Collection{}

	first, err := s.Resolve(skillConflict("a"), col)
	require.NoError(t, err)
	second, err := s.Resolve(skillConflict("b"), col)
	require.NoError(t, err)

	assert.Equal(t, ResolutionSkip, first.Resolution)
	assert.Equal(t, ResolutionMerge, second.Resolution)
	assert.Equal(t, 2, prompter.calls)
}

func TestInteractiveStrategy_ApplyAll(t *testing.T) {
	prompter := &fakePrompter{answers: []Resolution{ResolutionFork}, applyAt: 1}
	s := NewInteractiveStrategy(prompter, "")
	col := &collection.Collection{}

	first, err := s.Resolve(skillConflict("a"), col)
	require.NoError(t, err)
	second, err := s.Resolve(skillConflict("b"), col)
	require.NoError(t, err)

	assert.Equal(t, ResolutionFork, first.Resolution)
	assert.Equal(t, ResolutionFork, second.Resolution)
	assert.Equal(t, 1, prompter.calls, "second conflict must not prompt again")
	assert.Equal(t, "b-imported", second.NewName)
}

func TestInteractiveStrategy_PromptErrorAborts(t *testing.T) {
	prompter := &fakePrompter{err: errors.ErrNoInput}
	s := NewInteractiveStrategy(prompter, "")

	_, err := s.Resolve(skillConflict("a"), &collection.Collection{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoInput)
}

func TestForName(t *testing.T) {
	s, err := ForName(StrategyMerge, nil, "")
	require.NoError(t, err)
	assert.IsType(t, MergeStrategy{}, s)

	s, err = ForName(StrategySkip, nil, "")
	require.NoError(t, err)
	assert.IsType(t, SkipStrategy{}, s)

	s, err = ForName(StrategyFork, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &ForkStrategy{}, s)

	_, err = ForName(StrategyInteractive, nil, "")
	require.Error(t, err, "interactive without a prompter")

	s, err = ForName(StrategyInteractive, &fakePrompter{}, "")
	require.NoError(t, err)
	assert.IsType(t, &InteractiveStrategy{}, s)
}
