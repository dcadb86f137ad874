package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/models"
	"github.com/ternarybob/nativetrace/internal/services/classifier"
	"github.com/ternarybob/nativetrace/internal/services/cmdline"
)

func stepsFor(t *testing.T, text string) []*models.BuildStep {
	t.Helper()
	invs, warnings := cmdline.Tokenize(text, models.DialectPOSIX)
	require.Empty(t, warnings)
	return classifier.NewDefault(arbor.NewNoOpLogger()).ClassifyAll(invs)
}

func analyze(t *testing.T, text string) map[string]models.DependencyChain {
	t.Helper()
	return NewAnalyzer(arbor.NewNoOpLogger()).Analyze(stepsFor(t, text))
}

func TestAnalyze_CompileThenLink(t *testing.T) {
	steps := stepsFor(t, "g++ -c a.c -o a.o\ng++ a.o -o a.so")
	require.Len(t, steps, 2)

	chains := NewAnalyzer(arbor.NewNoOpLogger()).Analyze(steps)
	require.Len(t, chains, 1)

	chain, ok := chains["a.so"]
	require.True(t, ok)
	require.Len(t, chain, 1)
	assert.Equal(t, "a.c", chain[0].Source)
	assert.Same(t, steps[0], chain[0].Step)
}

func TestAnalyze_SharedObjectTwoTerminals(t *testing.T) {
	chains := analyze(t, "g++ -c a.c -o a.o\ng++ a.o -o x/a.so\ng++ a.o -o y/a.so")

	require.Len(t, chains, 2)
	assert.Equal(t, []string{"a.c"}, chains["x/a.so"].Sources())
	assert.Equal(t, []string{"a.c"}, chains["y/a.so"].Sources())
}

func TestAnalyze_DiamondWalkedOnce(t *testing.T) {
	text := "gcc -c a.c -o a.o\n" +
		"ar rcs libm.a a.o\n" +
		"gcc a.o libm.a -o libout.so"
	chains := analyze(t, text)

	require.Len(t, chains, 1)
	assert.Equal(t, []string{"a.c"}, chains["libout.so"].Sources())
}

func TestAnalyze_StaticIntoShared(t *testing.T) {
	text := "gcc -c a.c -o obj/a.o\n" +
		"gcc -c b.c -o obj/b.o\n" +
		"ar rcs obj/libfoo.a obj/a.o obj/b.o\n" +
		"g++ -c main.cpp -o obj/main.o\n" +
		"g++ obj/main.o obj/libfoo.a -o libs/x86/libapp.so"
	steps := stepsFor(t, text)
	chains := NewAnalyzer(arbor.NewNoOpLogger()).Analyze(steps)

	assert.Equal(t, []string{"libs/x86/libapp.so"}, Terminals(steps))
	chain := chains["libs/x86/libapp.so"]
	assert.Equal(t, []string{"a.c", "b.c", "main.cpp"}, chain.Sources())

	// each source is paired with the step that consumed it directly
	assert.Equal(t, []string{"obj/a.o"}, chain[0].Step.Outputs)
	assert.Equal(t, []string{"obj/b.o"}, chain[1].Step.Outputs)
	assert.Equal(t, []string{"obj/main.o"}, chain[2].Step.Outputs)
}

func TestAnalyze_SortedBySource(t *testing.T) {
	chains := analyze(t, "gcc z.c y.c x.c -o out.so")
	assert.Equal(t, []string{"x.c", "y.c", "z.c"}, chains["out.so"].Sources())
}

func TestAnalyze_PrebuiltLeafKept(t *testing.T) {
	chains := analyze(t, "gcc -c a.c -o a.o\ngcc a.o prebuilt/libz.a -o out.so")
	assert.Equal(t, []string{"a.c", "prebuilt/libz.a"}, chains["out.so"].Sources())
}

func TestAnalyze_SelfReference(t *testing.T) {
	steps := stepsFor(t, "ar rcs lib.a lib.a x.o")
	require.Len(t, steps, 1)

	assert.Equal(t, []string{"lib.a"}, Terminals(steps))
	chains := NewAnalyzer(arbor.NewNoOpLogger()).Analyze(steps)
	assert.Equal(t, []string{"x.o"}, chains["lib.a"].Sources())
}

func TestAnalyze_CycleCut(t *testing.T) {
	text := "gcc b.o -o a.o\n" +
		"gcc a.o -o b.o\n" +
		"gcc a.o -o final.so"
	chains := analyze(t, text)

	require.Len(t, chains, 1)
	chain, ok := chains["final.so"]
	require.True(t, ok)
	assert.Empty(t, chain)
}

func TestAnalyze_LaterProducerWins(t *testing.T) {
	chains := analyze(t, "gcc -c old.c -o a.o\ngcc -c new.c -o a.o\ngcc a.o -o a.so")
	assert.Equal(t, []string{"new.c"}, chains["a.so"].Sources())
}

func TestAnalyze_Deterministic(t *testing.T) {
	text := "gcc -c c.c -o c.o\ngcc -c a.c -o a.o\ngcc -c b.c -o b.o\n" +
		"ar rcs libx.a c.o a.o\ngcc b.o libx.a -o libx.so\ngcc a.o -o liby.so"
	first := analyze(t, text)
	for i := 0; i < 10; i++ {
		again := analyze(t, text)
		require.Equal(t, len(first), len(again))
		for out, chain := range first {
			assert.Equal(t, chain.Sources(), again[out].Sources())
		}
	}
	assert.Equal(t, []string{"a.c", "b.c", "c.c"}, first["libx.so"].Sources())
}

func TestTerminals_Empty(t *testing.T) {
	assert.Empty(t, Terminals(nil))
	assert.Empty(t, NewAnalyzer(arbor.NewNoOpLogger()).Analyze(nil))
}
